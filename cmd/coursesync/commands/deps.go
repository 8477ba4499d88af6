package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"course-mirror/internal/config"
	"course-mirror/internal/providers"
	"course-mirror/internal/providers/mftplus"
	"course-mirror/internal/sftpclient"
)

func newProvider(c config.Config) providers.MFTPlus {
	client := mftplus.New(c.APIURL)
	client.UserAgent = c.UserAgent
	client.HTTP.Timeout = c.Timeout()
	client.PageSize = c.PageSize
	client.Concurrency = c.Concurrency
	client.MaxEmptyPages = c.MaxEmptyPages
	client.MaxPages = c.MaxPages
	client.PageDelay = c.PageDelay()
	client.Log = slog.Default()
	return providers.MFTPlus{C: client, SiteBase: c.SiteBase}
}

func sftpConfig(c config.Config) sftpclient.Config {
	return sftpclient.Config{
		Host:                  c.SFTPHost,
		Port:                  c.SFTPPort,
		User:                  c.SFTPUser,
		Pass:                  c.SFTPPass,
		RemoteDir:             c.SFTPRemoteDir,
		KnownHosts:            c.SFTPKnownHosts,
		InsecureIgnoreHostKey: c.SFTPInsecure,
	}
}

func upload(ctx context.Context, paths ...string) error {
	slog.Info("uploading", "files", len(paths), "host", cfg.SFTPHost, "dir", cfg.SFTPRemoteDir)
	return sftpclient.UploadFiles(ctx, sftpConfig(cfg), paths...)
}

// withSuffix turns mftplus_courses.csv into mftplus_courses_filter.csv.
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
