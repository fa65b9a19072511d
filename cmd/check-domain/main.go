package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"via-fatto-painel/common/logger"
	"via-fatto-painel/internal/config"
	"via-fatto-painel/internal/repository"
	"via-fatto-painel/internal/store"
	"via-fatto-painel/internal/tenancy"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens:
// 0 resolved, 1 not resolved or failed, 2 usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check-domain", flag.ContinueOnError)
	fs.SetOutput(stderr)
	host := fs.String("host", "", "Hostname to resolve (e.g. 'painel.viafatto.com.br')")
	user := fs.String("user", "", "User id to look up the role for (optional)")
	timeout := fs.Duration("timeout", 10*time.Second, "Overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *host == "" {
		fs.Usage()
		return 2
	}

	cfg := config.Load()
	zl, err := logger.NewLogger(cfg.Log.Level, "console", "check-domain")
	if err != nil {
		zl = zap.NewNop()
	}
	defer zl.Sync()

	dir, closeDir, err := repository.OpenDirectory(cfg, zl)
	if err != nil {
		fmt.Fprintf(stderr, "Cannot open directory: %v\n", err)
		return 1
	}
	defer closeDir()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// a private cache keeps operator runs away from client override slots
	overrides := store.NewOverrideCache(store.NewMemoryKV(), cfg.Tenancy.OverrideKey, 0)
	tenants := tenancy.NewTenantLookup(dir.Tenants, zl)
	engine := tenancy.NewEngine(
		tenancy.NewDomainResolver(dir.Domains, tenants, zl),
		tenants,
		overrides,
		tenancy.Options{FallbackTenantID: cfg.Tenancy.FallbackTenantID, IsDevBuild: cfg.Tenancy.IsDevBuild},
		zl,
	)

	res := engine.Resolve(ctx, *host)
	out := map[string]any{
		"environment": tenancy.ClassifyEnvironment(*host),
		"domain_type": tenancy.ClassifyDomainType(*host),
		"result":      res,
	}
	if *user != "" && res.Resolved() {
		role := tenancy.NewRoleLookup(dir.Memberships, zl).FetchRole(ctx, res.TenantID(), *user)
		out["binding"] = tenancy.NewBinding(res).WithRole(*user, role)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "Encode error: %v\n", err)
		return 1
	}
	if !res.Resolved() {
		fmt.Fprintf(stderr, "hostname %s did not resolve: %s\n", res.Hostname, res.Error)
		return 1
	}
	return 0
}
