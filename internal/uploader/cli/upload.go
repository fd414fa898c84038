package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"photo-gallery/internal/config"
	"photo-gallery/internal/observability"
	"photo-gallery/internal/uploader"

	"github.com/spf13/cobra"
)

type uploadFlags struct {
	server      string
	onDuplicate string
	legacy      bool
	csrfToken   string
	csrfHeader  string
	noCSRF      bool
	timeout     time.Duration
}

func newUploadCmd(profile *string) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload photos in the order given",
		Long: `Uploads each file with its own request, sequentially. The first rejected
file stops the batch and its server message is printed; files before it stay
uploaded. When every file succeeds the gallery is listed once.

Unless --csrf-token is given, the gallery page is fetched first and its
_csrf and _csrf_header meta tags supply the anti-forgery credential.
The legacy endpoint sends no duplicate mode and no CSRF token.`,
		Example: `  # Upload two photos, refusing duplicates
  photo-upload upload a.jpg b.png

  # Replace existing copies of identical content
  photo-upload upload --on-duplicate overwrite holiday/*.jpg

  # Talk to a deployment that only exposes the legacy endpoint
  photo-upload upload --legacy scan.webp`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUploader(*profile)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runUpload(cmd.Context(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.server, "server", "s", "", "gallery base URL (default from profile or http://localhost:8080)")
	f.StringVarP(&flags.onDuplicate, "on-duplicate", "d", "", "duplicate handling sent to the server: cancel, skip or overwrite")
	f.BoolVar(&flags.legacy, "legacy", false, "use the legacy /api/upload endpoint")
	f.StringVar(&flags.csrfToken, "csrf-token", "", "CSRF token to send instead of reading the gallery page")
	f.StringVar(&flags.csrfHeader, "csrf-header", "", "header carrying the CSRF token")
	f.BoolVar(&flags.noCSRF, "no-csrf", false, "do not require a CSRF token")
	f.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout, e.g. 30s (0 means none)")

	return cmd
}

// apply overrides the loaded configuration with flags the user set
func (f *uploadFlags) apply(cmd *cobra.Command, cfg *config.UploaderConfig) {
	changed := cmd.Flags().Changed

	if changed("server") {
		cfg.ServerURL = f.server
	}
	if changed("on-duplicate") {
		cfg.OnDuplicate = f.onDuplicate
	}
	if changed("legacy") && f.legacy {
		cfg.Contract = config.ContractEnvelope
		cfg.RequireCSRF = false
	}
	if changed("csrf-token") {
		cfg.CSRFToken = f.csrfToken
	}
	if changed("csrf-header") {
		cfg.CSRFHeader = f.csrfHeader
	}
	if changed("no-csrf") {
		cfg.RequireCSRF = !f.noCSRF
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
}

// stderrNotifier prints alerts for the user
type stderrNotifier struct {
	out io.Writer
}

func (n stderrNotifier) Alert(_ context.Context, message string) {
	fmt.Fprintln(n.out, message)
}

func runUpload(ctx context.Context, cfg *config.UploaderConfig, paths []string, stdout, stderr io.Writer) error {
	obsConfig := observability.LoadClientConfig("photo-upload")
	obsConfig.LogLevel = cfg.LogLevel
	logger := observability.NewLoggerWithWriter(obsConfig, stderr)

	provider, err := observability.NewProvider(ctx, obsConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	observability.InstallErrorHandler(logger)
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx).Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	contract, ok := uploader.ParseContract(strings.ToLower(cfg.Contract))
	if !ok {
		return fmt.Errorf("unknown contract %q", cfg.Contract)
	}

	client := uploader.NewHTTPClient(cfg.Timeout)

	reloader, err := uploader.NewGalleryReloader(client, cfg.ServerURL, logger)
	if err != nil {
		return err
	}

	dispatcher, err := uploader.New(uploader.Options{
		BaseURL:     cfg.ServerURL,
		Contract:    contract,
		RequireCSRF: cfg.RequireCSRF,
		Client:      client,
		Notifier:    stderrNotifier{out: stderr},
		Reloader:    reloader,
		Logger:      logger,
		Tracer:      provider.Tracer("photo-gallery/uploader"),
	})
	if err != nil {
		return err
	}

	var creds uploader.CredentialSource
	switch {
	case cfg.CSRFToken != "":
		creds = uploader.StaticCredential{Token: cfg.CSRFToken, Header: cfg.CSRFHeader}
	case contract == uploader.ContractEnvelope:
		creds = uploader.StaticCredential{}
	default:
		page, err := uploader.NewPageCredentialSource(client, cfg.ServerURL)
		if err != nil {
			return err
		}
		creds = page
	}

	files := make(uploader.FileList, 0, len(paths))
	for _, p := range paths {
		files = append(files, uploader.FileFromPath(p))
	}

	binding := uploader.Bind(dispatcher, files, uploader.StaticMode(cfg.OnDuplicate), creds)

	report, err := binding.OnChange(ctx)
	for i, record := range report.Uploaded {
		fmt.Fprintf(stdout, "uploaded %s%s\n", files[i].Name, describe(record))
	}
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(stderr, "no files selected")
	}
	return nil
}

// describe renders the id the server assigned, if any
func describe(record uploader.Record) string {
	id, ok := record.Field("id")
	if !ok {
		return ""
	}
	if f, isNum := id.(float64); isNum {
		return fmt.Sprintf(" (id %d)", int64(f))
	}
	return fmt.Sprintf(" (id %v)", id)
}
