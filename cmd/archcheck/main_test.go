package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/archcheck/model"
	"github.com/c360studio/archcheck/processor/conformance"
)

var cleanProject = map[string]string{
	"src/lib/server.ts": "export const createServerClient = () => ({});\n",
	"src/features/comics/repositories/server.repo.ts": `import { createServerClient } from "@/lib/server";

/** Fetches all comics. */
export async function findComics() {
  return createServerClient();
}
`,
	"src/features/comics/services/server.service.ts": `import * as repo from "../repositories/server.repo";

/** Lists comics for the catalog. */
export async function getComics() {
  return repo.findComics();
}
`,
	"src/features/comics/actions/server.action.ts": `"use server";

import * as comicsService from "../services/server.service";

export async function handleGetComics() {
  try {
    return await comicsService.getComics();
  } catch (err) {
    console.error(err);
    return [];
  }
}
`,
	"src/components/ComicCard.tsx": "export function ComicCard() { return null; }\n",
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheck_CleanProject(t *testing.T) {
	dir := writeProject(t, cleanProject)

	out, err := execute(t, "check", "--project-root", dir, "--format", "json", "--log-level", "error")
	require.NoError(t, err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Passed)
	assert.Empty(t, report.Violations)
	assert.Equal(t, 4, report.Files)
	assert.Equal(t, filepath.Base(dir), report.Project)
}

func TestCheck_DefaultCommandReportsViolations(t *testing.T) {
	files := map[string]string{}
	for k, v := range cleanProject {
		files[k] = v
	}
	files["src/lib/client.ts"] = "export const createBrowserClient = () => ({});\n"
	files["src/features/comics/services/server.service.ts"] = `import { createBrowserClient } from "@/lib/client";

/** Lists comics for the catalog. */
export async function getComics() {
  return createBrowserClient();
}
`
	dir := writeProject(t, files)

	out, err := execute(t, "--project-root", dir, "--no-color", "--log-level", "error")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errCheckFailed))
	assert.Contains(t, out, "src/features/comics/services/server.service.ts\n")
	assert.Contains(t, out, "resource-boundary/outside-repository")
	assert.Contains(t, out, "✗ 4 files checked, 1 errors, 0 warnings")
}

func TestCheck_ProjectConfigFile(t *testing.T) {
	files := map[string]string{}
	for k, v := range cleanProject {
		files[k] = v
	}
	files["src/features/comics/hooks/comics.ts"] = "\"use client\";\nexport function useComics() { return 1; }\n"
	files["archcheck.yaml"] = `severities:
  naming: warning
`
	dir := writeProject(t, files)

	out, err := execute(t, "check", "--project-root", dir, "--format", "github", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "::warning file=src/features/comics/hooks/comics.ts,title=naming/hooks::")
}

func TestCheck_PartialFeatureRootKeepsDefaults(t *testing.T) {
	files := map[string]string{}
	for k, v := range cleanProject {
		files[k] = v
	}
	files["src/lib/client.ts"] = "export const createBrowserClient = () => ({});\n"
	files["src/features/comics/services/server.service.ts"] = `import { createBrowserClient } from "@/lib/client";

/** Lists comics for the catalog. */
export async function getComics() {
  return createBrowserClient();
}
`
	files["archcheck.yaml"] = `feature_roots:
  - path: src/features
    resource_root:
      replace_suffix: features
      with: lib
`
	dir := writeProject(t, files)

	out, err := execute(t, "check", "--project-root", dir, "--format", "json", "--log-level", "error")
	require.ErrorIs(t, err, errCheckFailed)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "resource-boundary/outside-repository", report.Violations[0].Rule)
	assert.Equal(t, "src/features/comics/services/server.service.ts", report.Violations[0].File)
}

func TestCheck_ConfigurationErrorIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "check", "--project-root", dir, "--log-level", "error")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errCheckFailed))
	assert.True(t, errors.Is(err, conformance.ErrFeatureRootMissing))
}

func TestCheck_UnknownFormat(t *testing.T) {
	dir := writeProject(t, cleanProject)

	_, err := execute(t, "check", "--project-root", dir, "--format", "sarif", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestResources(t *testing.T) {
	files := map[string]string{}
	for k, v := range cleanProject {
		files[k] = v
	}
	files["src/lib/supabase/admin.ts"] = "export const admin = 1;\n"
	dir := writeProject(t, files)

	out, err := execute(t, "resources", "--project-root", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "src/features")
	assert.Contains(t, out, "resources: src/lib")
	assert.Regexp(t, `admin\s+supabase/admin\s+@/lib/supabase/admin`, out)
	assert.Regexp(t, `server\s+server\s+@/lib/server`, out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "archcheck version "+Version+" (build: "+BuildTime+")\n", out)
}
