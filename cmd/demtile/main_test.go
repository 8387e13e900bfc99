package main

import (
	"archive/zip"
	"bytes"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/gofrs/flock"
)

type cliTestEnv struct {
	sourceDir string
	workDir   string
	baseDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("DEMTILE_SOURCE_DIR", "")
	t.Setenv("DEMTILE_WORK_DIR", "")
	env := &cliTestEnv{
		sourceDir: filepath.Join(base, "alosw30"),
		workDir:   filepath.Join(base, "_unpack"),
		baseDir:   base,
	}
	assert.NoError(t, os.MkdirAll(env.sourceDir, 0o755))
	return env
}

func (e *cliTestEnv) args(args ...string) []string {
	return append(args, "--source", e.sourceDir, "--work", e.workDir, "--log-level", "error")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func writeZipFile(t *testing.T, path string, files map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	assert.NoError(t, err)
	zipWriter := zip.NewWriter(file)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		w, err := zipWriter.Create(name)
		assert.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		assert.NoError(t, err)
	}
	assert.NoError(t, zipWriter.Close())
	assert.NoError(t, file.Close())
}

func assertFile(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, expected, string(content))
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "%s exists", path)
}

func TestUnpack(t *testing.T) {
	env := setupCLITestEnv(t)
	writeZipFile(t, filepath.Join(env.sourceDir, "N054E026.zip"), map[string]string{
		"N054E026/ALPSMLC30_N054E026_DSM.tif": "dsm54",
		"N054E026/ALPSMLC30_N054E026_MSK.tif": "msk54",
		"N054E026/ALPSMLC30_N054E026_HDR.txt": "hdr54",
	})
	writeZipFile(t, filepath.Join(env.sourceDir, "S001W001.zip"), map[string]string{
		"S001W001/ALPSMLC30_S001W001_DSM.tif": "dsm1",
	})
	assert.NoError(t, os.WriteFile(filepath.Join(env.sourceDir, "corrupt.zip"), []byte("not a zip"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(env.sourceDir, "README.txt"), []byte("readme"), 0o644))

	stdout, _, err := runCLI(t, env.args()...)
	assert.NoError(t, err)

	assertFile(t, filepath.Join(env.workDir, "+50+020", "N54E026_ALOS3W30.tif"), "dsm54")
	assertFile(t, filepath.Join(env.workDir, "-10-010", "S01W001_ALOS3W30.tif"), "dsm1")
	assertNotExist(t, filepath.Join(env.workDir, "N054E026"))
	assertNotExist(t, filepath.Join(env.workDir, "S001W001"))
	_, err = os.Stat(filepath.Join(env.sourceDir, "N054E026.zip"))
	assert.NoError(t, err)

	assert.Contains(t, stdout, "Archives found")
	assert.Contains(t, stdout, "Files organized")
	assert.Contains(t, stdout, "+50+020")
	assert.Contains(t, stdout, "-10-010")
	assert.Contains(t, stdout, "failed archive corrupt.zip:")

	_, err = os.Stat(env.workDir + ".lock")
	assert.NoError(t, err)
}

func TestUnpackRerun(t *testing.T) {
	env := setupCLITestEnv(t)
	writeZipFile(t, filepath.Join(env.sourceDir, "N035E139.zip"), map[string]string{
		"N035E139/ALPSMLC30_N035E139_DSM.tif": "dsm",
		"N035E139/ALPSMLC30_N035E139_STK.tif": "stk",
	})

	_, _, err := runCLI(t, env.args()...)
	assert.NoError(t, err)
	_, _, err = runCLI(t, env.args()...)
	assert.NoError(t, err)

	entries, err := os.ReadDir(env.workDir)
	assert.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Equal(t, []string{"+30+130"}, names)
	assertFile(t, filepath.Join(env.workDir, "+30+130", "N35E139_ALOS3W30.tif"), "dsm")
}

func TestUnpackNoArchives(t *testing.T) {
	env := setupCLITestEnv(t)
	assert.NoError(t, os.MkdirAll(filepath.Join(env.workDir, "stale"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(env.workDir, "stale", "notes.txt"), []byte("notes"), 0o644))

	stdout, _, err := runCLI(t, env.args()...)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Archives found")
	assert.NotContains(t, stdout, "Files found")
	assertFile(t, filepath.Join(env.workDir, "stale", "notes.txt"), "notes")
}

func TestUnpackLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	assert.NoError(t, os.MkdirAll(filepath.Dir(env.workDir), 0o755))
	lock := flock.New(env.workDir + ".lock")
	ok, err := lock.TryLock()
	assert.NoError(t, err)
	assert.True(t, ok)
	defer lock.Unlock() //nolint:errcheck

	_, _, err = runCLI(t, env.args()...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "another demtile run holds")
}

func TestUnpackMetricsTextfile(t *testing.T) {
	env := setupCLITestEnv(t)
	writeZipFile(t, filepath.Join(env.sourceDir, "N054E026.zip"), map[string]string{
		"N054E026/ALPSMLC30_N054E026_DSM.tif": "dsm",
	})
	metricsPath := filepath.Join(env.baseDir, "metrics", "demtile.prom")
	configPath := filepath.Join(env.baseDir, "config.toml")
	assert.NoError(t, os.WriteFile(configPath, []byte("[metrics]\ntextfile = \""+filepath.ToSlash(metricsPath)+"\"\n"), 0o644))

	_, _, err := runCLI(t, env.args("--config", configPath)...)
	assert.NoError(t, err)

	content, err := os.ReadFile(metricsPath)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "demtile_archives_extracted_total")
	assert.Contains(t, string(content), "demtile_files_organized_total")
}

func TestUnpackRejectsArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env.args("extra")...)
	assert.Error(t, err)
}

func TestOrganize(t *testing.T) {
	env := setupCLITestEnv(t)
	assert.NoError(t, os.MkdirAll(filepath.Join(env.workDir, "a", "b"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(env.workDir, "a", "b", "ALPSMLC30_N010W075_DSM.tif"), []byte("dsm"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(env.workDir, "a", "ALPSMLC30_N010W075_MSK.tif"), []byte("msk"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(env.sourceDir, "N010W075.zip"), []byte("ignored"), 0o644))

	stdout, _, err := runCLI(t, env.args("organize")...)
	assert.NoError(t, err)
	assertFile(t, filepath.Join(env.workDir, "+10-080", "N10W075_ALOS3W30.tif"), "dsm")
	assertNotExist(t, filepath.Join(env.workDir, "a"))
	assert.Contains(t, stdout, "Files organized")
	assert.NotContains(t, stdout, "Archives found")
}

func TestTileDir(t *testing.T) {
	setupCLITestEnv(t)
	stdout, _, err := runCLI(t, "tiledir",
		"ALPSMLC30_S001W001_DSM.tif",
		"downloads/N054E026/ALPSMLC30_N054E026_DSM.tif",
		"notes.txt",
	)
	assert.NoError(t, err)
	assert.Equal(t, ""+
		"ALPSMLC30_S001W001_DSM.tif\t-10-010/S01W001_ALOS3W30.tif\n"+
		"downloads/N054E026/ALPSMLC30_N054E026_DSM.tif\t+50+020/N54E026_ALOS3W30.tif\n"+
		"notes.txt\tunparseable\n",
		stdout,
	)
}

func TestTileDirRequiresArgs(t *testing.T) {
	setupCLITestEnv(t)
	_, _, err := runCLI(t, "tiledir")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "etc", "demtile.toml")

	stdout, _, err := runCLI(t, "config", "init", target)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Wrote sample configuration to "+target)
	_, err = os.Stat(target)
	assert.NoError(t, err)

	_, _, err = runCLI(t, "config", "init", target)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, "config", "init", "--overwrite", target)
	assert.NoError(t, err)
}

func TestConfigInitDefaultPath(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, "config", "init")
	assert.NoError(t, err)
	expected := filepath.Join(env.baseDir, "home", ".config", "demtile", "config.toml")
	assert.Contains(t, stdout, expected)
	_, err = os.Stat(expected)
	assert.NoError(t, err)
}

func TestLookup(t *testing.T) {
	env := setupCLITestEnv(t)
	assert.NoError(t, os.MkdirAll(filepath.Join(env.workDir, "-40+010"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(env.workDir, "-40+010", "S34E018_ALOS3W30.tif"), []byte("dsm"), 0o644))

	stdout, _, err := runCLI(t, append(env.args("lookup"), "--", "-33.9", "18.4")...)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(env.workDir, "-40+010", "S34E018_ALOS3W30.tif")+"\n", stdout)

	_, _, err = runCLI(t, env.args("lookup", "54.3", "26.7")...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no N54E026_ALOS3W30.tif in")

	_, _, err = runCLI(t, env.args("lookup", "91", "0")...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, _, err = runCLI(t, env.args("lookup", "north", "0")...)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	env := setupCLITestEnv(t)
	assert.NoError(t, os.MkdirAll(filepath.Join(env.workDir, "+50+020"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(env.workDir, "+50+020", "N54E026_ALOS3W30.tif"), []byte("not a tiff"), 0o644))

	stdout, _, err := runCLI(t, env.args("verify")...)
	assert.Error(t, err)
	assert.Equal(t, "1 of 1 files failed verification", err.Error())
	assert.Contains(t, stdout, filepath.Join("+50+020", "N54E026_ALOS3W30.tif"))
	assert.Contains(t, stdout, "Verified 1 files, 1 failed")
}

func TestVerifyEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, env.args("verify")...)
	assert.NoError(t, err)
	assert.Equal(t, "Verified 0 files, 0 failed\n", stdout)
}
