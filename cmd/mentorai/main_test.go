package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("MENTORAI_LOG_LEVEL", "error")

	// rootCmd is shared, so flags keep values between runs.
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mentorai version")
}

func TestCompanies_JSON(t *testing.T) {
	out, err := run(t, "companies", "--backend", "memory", "--json", "--domain", "DevOps")
	require.NoError(t, err)

	var companies []domain.Company
	require.NoError(t, json.Unmarshal([]byte(out), &companies))
	require.Len(t, companies, 1)
	assert.Equal(t, "acme-sre", companies[0].ID)
}

func TestRoadmap_Formats(t *testing.T) {
	out, err := run(t, "roadmap", "--backend", "memory", "--format", "mermaid", "acme-sre", "globex-ml")
	require.NoError(t, err)
	assert.Contains(t, out, `start(("Acme Cloud, Globex"))`)

	out, err = run(t, "roadmap", "--backend", "memory", "--format", "markdown", "initech-swe")
	require.NoError(t, err)
	assert.Contains(t, out, "Initech")

	_, err = run(t, "roadmap", "--backend", "memory", "acme-sre", "globex-ml", "initech-swe", "hooli-pm")
	assert.ErrorIs(t, err, domain.ErrSelectionLimit)

	_, err = run(t, "roadmap", "--backend", "memory", "--format", "pdf", "acme-sre")
	assert.Error(t, err)
}

func TestSeedAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentorai.db")
	t.Setenv("MENTORAI_SQLITE_PATH", path)

	out, err := run(t, "seed", "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 6 companies")

	out, err = run(t, "migrate", "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "is at migration 2")

	out, err = run(t, "companies", "--backend", "sqlite", "--json", "--dsa", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "globex-ml")

	_, err = run(t, "migrate", "--backend", "memory")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "dev-secret-with-enough-length-for-hs256")
	out, err := run(t, "token", "u1", "--onboarded")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}
