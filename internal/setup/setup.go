package setup

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/commwatch/commwatch/internal/config"
	"github.com/commwatch/commwatch/internal/handler"
	"github.com/commwatch/commwatch/internal/jwt"
	"github.com/commwatch/commwatch/internal/mailer"
	mw "github.com/commwatch/commwatch/internal/middleware"
	"github.com/commwatch/commwatch/internal/service"
	"github.com/commwatch/commwatch/internal/storage/blob"
	"github.com/commwatch/commwatch/internal/storage/pg"
)

// Dependencies holds all initialized application dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Uploads        http.Handler
}

// SetupDependencies wires storage, services and handlers together and
// seeds first-run data (default superadmin, default email groups).
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	mail := mailer.New(&cfg.Private.Smtp, cfg.Public.MailTimeout)

	auth := service.NewAuth(storage, jwtService)
	report := service.NewReport(storage, blobs)
	group := service.NewGroup(storage)
	forward := service.NewForward(storage, storage, blobs, mail,
		cfg.Public.MailAttachmentLimit, cfg.Public.BaseURL+"/admin")
	stats := service.NewStats(storage)

	if err := auth.EnsureDefaultAdmin(); err != nil {
		storage.Cleanup()
		return nil, fmt.Errorf("failed to seed default admin: %w", err)
	}
	if err := group.EnsureDefaults(); err != nil {
		storage.Cleanup()
		return nil, fmt.Errorf("failed to seed default email groups: %w", err)
	}

	h := handler.New(auth, report, group, forward, stats, storage, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: mw.NewAuth(jwtService),
		Uploads:        uploadsHandler(blobs),
	}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Public.StorageProvider {
	case "local":
		return blob.NewLocal(cfg.Public.UploadsDir, cfg.Public.BaseURL)
	case "s3":
		return blob.NewS3(ctx, cfg.Private.S3)
	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Public.StorageProvider)
	}
}

// uploadsHandler serves evidence downloads. Local storage is served
// straight from disk; other providers redirect to a signed URL.
func uploadsHandler(blobs blob.Store) http.Handler {
	if local, ok := blobs.(*blob.Local); ok {
		return http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Root())))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		url, err := blobs.URL(r.Context(), name)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	})
}
