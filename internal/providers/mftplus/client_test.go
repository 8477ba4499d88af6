package mftplus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"course-mirror/internal/domain"
)

// catalogServer serves total fake courses in pages of 9. Offsets listed in fail answer 500.
type catalogServer struct {
	total int
	fail  map[int]bool
	extra map[int]int // skip -> course count served past the end

	mu    sync.Mutex
	skips []int
	forms []map[string][]string
}

func (s *catalogServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	skip, _ := strconv.Atoi(r.PostForm.Get("skip"))

	s.mu.Lock()
	s.skips = append(s.skips, skip)
	s.forms = append(s.forms, r.PostForm)
	s.mu.Unlock()

	if s.fail[skip] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	var page []map[string]any
	end := skip + 9
	if n, ok := s.extra[skip]; ok {
		for i := 0; i < n; i++ {
			page = append(page, map[string]any{"id": map[string]string{"$oid": fmt.Sprintf("late-%d", i)}})
		}
	}
	for i := skip; i < end && i < s.total; i++ {
		page = append(page, map[string]any{
			"id":    map[string]string{"$oid": fmt.Sprintf("c%03d", i)},
			"title": fmt.Sprintf("course %d", i),
		})
	}
	if page == nil {
		w.Write([]byte("[]"))
		return
	}
	json.NewEncoder(w).Encode(page)
}

func (s *catalogServer) requested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.skips...)
}

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL)
	c.HTTP = srv.Client()
	c.PageDelay = 0
	return c
}

func courseIDs(in []RawCourse) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		out = append(out, string(c.ID))
	}
	return out
}

func TestFetchAllStopsAfterConsecutiveEmptyPages(t *testing.T) {
	cs := &catalogServer{total: 20}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	got, err := newTestClient(srv).FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("Expected 20 courses, got %d", len(got))
	}
	for i, id := range courseIDs(got) {
		if want := fmt.Sprintf("c%03d", i); id != want {
			t.Errorf("Expected course %d to be %s, got %s", i, want, id)
			break
		}
	}
	// one batch of 5: 0, 9, 18 have data, 27 and 36 are the two empties
	if n := len(cs.requested()); n != 5 {
		t.Errorf("Expected 5 page requests, got %d", n)
	}
}

func TestFetchAllEmptyCatalog(t *testing.T) {
	cs := &catalogServer{}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	c := newTestClient(srv)
	c.Concurrency = 1

	got, err := c.FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no courses, got %d", len(got))
	}
	if n := len(cs.requested()); n != 2 {
		t.Errorf("Expected exactly 2 page requests, got %d", n)
	}
}

func TestFetchAllFailedPageCountsAsEmpty(t *testing.T) {
	cs := &catalogServer{total: 27, fail: map[int]bool{9: true}}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	got, err := newTestClient(srv).FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	// page 9 is lost, the walk continues because the next page has data
	if len(got) != 18 {
		t.Errorf("Expected 18 courses, got %d", len(got))
	}
}

func TestFetchAllMatchesSequentialWalk(t *testing.T) {
	// two failures in a row end the walk; the data served at skip 36 in the same batch is dropped
	cs := &catalogServer{total: 18, fail: map[int]bool{18: true, 27: true}, extra: map[int]int{36: 3}}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	parallel, err := newTestClient(srv).FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}

	seq := newTestClient(srv)
	seq.Concurrency = 1
	sequential, err := seq.FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() sequential error: %v", err)
	}

	if len(parallel) != 18 {
		t.Errorf("Expected 18 courses, got %d", len(parallel))
	}
	if fmt.Sprint(courseIDs(parallel)) != fmt.Sprint(courseIDs(sequential)) {
		t.Errorf("Expected parallel and sequential walks to agree:\n%v\n%v", courseIDs(parallel), courseIDs(sequential))
	}
}

func TestFetchAllMaxPages(t *testing.T) {
	cs := &catalogServer{total: 1000}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	c := newTestClient(srv)
	c.Concurrency = 2
	c.MaxPages = 3

	got, err := c.FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if len(got) != 27 {
		t.Errorf("Expected 27 courses from 3 pages, got %d", len(got))
	}
	if n := len(cs.requested()); n != 3 {
		t.Errorf("Expected 3 page requests, got %d", n)
	}
}

func TestFetchAllCancelled(t *testing.T) {
	cs := &catalogServer{total: 1000}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(srv).FetchAll(ctx, domain.Filter{}); err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}

func TestSearchPageSendsFilter(t *testing.T) {
	cs := &catalogServer{total: 3}
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		if r.URL.Query().Get("need") != "search" {
			t.Errorf("Expected need=search, got %q", r.URL.RawQuery)
		}
		cs.ServeHTTP(w, r)
	}))
	defer srv.Close()

	f := domain.Filter{Places: []string{"p1"}, Departments: []string{"d1", "d2"}}
	got, err := newTestClient(srv).SearchPage(context.Background(), f, 0)
	if err != nil {
		t.Fatalf("SearchPage() error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 courses, got %d", len(got))
	}

	form := cs.forms[0]
	if fmt.Sprint(form["department[]"]) != "[d1 d2]" {
		t.Errorf("Expected department[]=[d1 d2], got %v", form["department[]"])
	}
	if fmt.Sprint(form["place[]"]) != "[p1]" {
		t.Errorf("Expected place[]=[p1], got %v", form["place[]"])
	}
	if _, ok := form["group[]"]; ok {
		t.Error("Expected empty lists to be omitted")
	}
	if form["type"][0] != "all" || form["pSkip"][0] != "0" {
		t.Errorf("Expected type=all pSkip=0, got %v", form)
	}
	if header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Errorf("Expected X-Requested-With header, got %q", header.Get("X-Requested-With"))
	}
	if header.Get("Referer") != DefaultReferer {
		t.Errorf("Expected Referer %q, got %q", DefaultReferer, header.Get("Referer"))
	}
}

func TestSearchPageBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).SearchPage(context.Background(), domain.Filter{}, 0); err == nil {
		t.Error("Expected a decode error for an HTML body")
	}
}

func TestFetchAllKeepsGoodCoursesOnMixedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch r.PostForm.Get("skip") {
		case "0":
			w.Write([]byte(`[{"id":{"$oid":"a"}},"oops",{"id":{"$oid":"b"}}]`))
		case "9":
			w.Write([]byte(`{"result":[{"id":{"$oid":"c"}},42]}`))
		default:
			w.Write([]byte("[]"))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.Concurrency = 1

	got, err := c.FetchAll(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	ids := courseIDs(got)
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Expected courses [a b c], got %v", ids)
	}
}

func TestReferenceEndpoints(t *testing.T) {
	var needs []string
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		needs = append(needs, r.URL.Query().Get("need"))
		ids = append(ids, r.PostForm.Get("ids[]"))
		switch r.URL.Query().Get("need") {
		case "group":
			w.Write([]byte(`{"result":[{"id":{"$oid":"g1"},"title":"شبکه"}]}`))
		default:
			w.Write([]byte(`[{"id":"x1","title":"تهران"},{"id":{"$oid":"x2"},"title":"کرج"}]`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ctx := context.Background()

	places, err := c.Places(ctx)
	if err != nil {
		t.Fatalf("Places() error: %v", err)
	}
	if len(places) != 2 || places[1].ID != "x2" {
		t.Errorf("Expected 2 places with $oid decoded, got %+v", places)
	}

	groups, err := c.Groups(ctx, "d9")
	if err != nil {
		t.Fatalf("Groups() error: %v", err)
	}
	if len(groups) != 1 || groups[0].Title != "شبکه" {
		t.Errorf("Expected the wrapped result list, got %+v", groups)
	}
	if needs[1] != "group" || ids[1] != "d9" {
		t.Errorf("Expected need=group ids[]=d9, got need=%s ids=%s", needs[1], ids[1])
	}
}
