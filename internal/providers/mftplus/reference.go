package mftplus

import (
	"context"
	"fmt"
	"net/url"

	"course-mirror/internal/httpx"
)

// Reference tables behind the calendar filters.

func (c *Client) Places(ctx context.Context) ([]RawRefItem, error) {
	return c.reference(ctx, "place", nil)
}

func (c *Client) Departments(ctx context.Context) ([]RawRefItem, error) {
	return c.reference(ctx, "department", nil)
}

func (c *Client) Months(ctx context.Context) ([]RawRefItem, error) {
	return c.reference(ctx, "month", nil)
}

// Groups lists the groups of one department.
func (c *Client) Groups(ctx context.Context, departmentID string) ([]RawRefItem, error) {
	return c.reference(ctx, "group", url.Values{"ids[]": {departmentID}})
}

// Courses lists the courses of one group.
func (c *Client) Courses(ctx context.Context, groupID string) ([]RawRefItem, error) {
	return c.reference(ctx, "course", url.Values{"ids[]": {groupID}})
}

func (c *Client) reference(ctx context.Context, need string, form url.Values) ([]RawRefItem, error) {
	retry := c.Retry
	if retry.MaxAttempts <= 1 {
		// reference requests retry even when search pages do not
		retry = httpx.DefaultRetryConfig()
	}
	_, body, err := httpx.Do(ctx, c.HTTP, httpx.PostForm(c.endpoint(need), form, c.headers()), retry)
	if err != nil {
		return nil, fmt.Errorf("mftplus: %s: %w", need, err)
	}
	items, err := decodeList[RawRefItem](body, func(i int, err error) {
		c.logger().Warn("mftplus: skipping undecodable item", "need", need, "index", i, "err", err)
	})
	if err != nil {
		return nil, fmt.Errorf("mftplus: decode %s: %w", need, err)
	}
	return items, nil
}
