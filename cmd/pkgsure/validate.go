package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/packsure/signing"
	"github.com/packsure/signing/prompt"
	"github.com/packsure/signing/trust"
	"github.com/packsure/signing/verifier/cms"
)

type validateOptions struct {
	registry     string
	packageID    string
	version      string
	archivePath  string
	metadataPath string
	configPath   string
	assumeYes    bool
	assumeNo     bool
	timeout      time.Duration
	verbose      bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pkgsure",
		Short:         "Package release signature validation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCommand())
	return root
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a downloaded release against its registry signature policy.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.registry, "registry", "", "registry URL the release came from")
	flags.StringVar(&opts.packageID, "package", "", "package identity as scope.name")
	flags.StringVar(&opts.version, "version", "", "release version")
	flags.StringVar(&opts.archivePath, "archive", "", "path to the downloaded source archive")
	flags.StringVar(&opts.metadataPath, "metadata", "", "path to the release metadata JSON")
	flags.StringVar(&opts.configPath, "config", "", "path to the registry security configuration JSON")
	flags.BoolVar(&opts.assumeYes, "assume-yes", false, "answer trust prompts with yes")
	flags.BoolVar(&opts.assumeNo, "assume-no", false, "answer trust prompts with no")
	flags.DurationVar(&opts.timeout, "timeout", 0, "timeout hint forwarded to retrieval and verification")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	for _, name := range []string{"registry", "package", "version", "archive", "metadata", "config"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runValidate(ctx context.Context, opts *validateOptions) error {
	if opts.assumeYes && opts.assumeNo {
		return errors.New("--assume-yes and --assume-no are mutually exclusive")
	}
	pkg, err := parsePackage(opts.packageID)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	configData, err := os.ReadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("read security configuration: %w", err)
	}
	config, err := signing.ParseSecurityConfig(configData)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(opts.archivePath)
	if err != nil {
		return fmt.Errorf("read source archive: %w", err)
	}

	var delegate signing.Delegate
	switch {
	case opts.assumeYes:
		delegate = prompt.AutoAccept{}
	case opts.assumeNo:
		delegate = prompt.AutoReject{}
	default:
		delegate = prompt.NewTerminal(os.Stdin, os.Stderr)
	}

	validatorOpts := []signing.Option{
		signing.WithDelegate(delegate),
		signing.WithFilesystem(osfs.New("/")),
		signing.WithLogger(logger),
	}
	if opts.timeout > 0 {
		validatorOpts = append(validatorOpts, signing.WithTimeout(opts.timeout))
	}

	validator, err := signing.NewValidator(
		&fileMetadataProvider{path: opts.metadataPath},
		cms.NewVerifier(cms.WithLogger(logger)),
		trust.NewMemoryLedger(trust.WithLogger(logger)),
		validatorOpts...,
	)
	if err != nil {
		return err
	}

	result, err := validator.Validate(ctx, signing.Request{
		Registry: opts.registry,
		Package:  pkg,
		Version:  opts.version,
		Content:  content,
		Config:   config,
	})
	if err != nil {
		return err
	}

	if result.SigningEntity != nil {
		fmt.Printf("accepted: %s@%s signed by %s\n", pkg, opts.version, result.SigningEntity)
	} else {
		fmt.Printf("accepted: %s@%s without signing entity\n", pkg, opts.version)
	}
	return nil
}

func parsePackage(id string) (signing.Package, error) {
	scope, name, ok := strings.Cut(id, ".")
	if !ok || scope == "" || name == "" {
		return signing.Package{}, fmt.Errorf("invalid package identity %q, expected scope.name", id)
	}
	return signing.Package{Scope: scope, Name: name}, nil
}

// fileMetadataProvider serves release metadata from a local JSON file,
// standing in for the registry's network protocol.
type fileMetadataProvider struct {
	path string
}

func (p *fileMetadataProvider) GetReleaseMetadata(_ context.Context, _ signing.Package, _ string) (*signing.ReleaseMetadata, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	var meta signing.ReleaseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse release metadata: %w", err)
	}
	return &meta, nil
}
