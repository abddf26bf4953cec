package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/koreader-highlights/internal/config"
	"github.com/mrlokans/koreader-highlights/internal/database"
)

const sampleLua = `return {
    ["annotations"] = {
        [1] = {
            ["chapter"] = "Chapter 1",
            ["datetime"] = "2026-01-25 10:30:00",
            ["pageno"] = 42,
            ["text"] = "This is a highlighted text",
        },
        [2] = {
            ["chapter"] = "Chapter 2",
            ["datetime"] = "2026-01-26 14:00:00",
            ["note"] = "My note",
            ["pageno"] = 100,
            ["text"] = "Another highlight",
        },
    },
    ["doc_props"] = {
        ["authors"] = "Test Author",
        ["title"] = "Test Book",
    },
}
`

// sunday is the day the default range of 2026-01-25..2026-01-31 is resolved on.
var sunday = time.Date(2026, time.February, 1, 12, 0, 0, 0, time.Local)

func setupLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Test Book.sdr")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.epub.lua"), []byte(sampleLua), 0644))
	return root
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.now = func() time.Time { return sunday }

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestImport_StoresHighlights(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")

	out, err := execute(t, context.Background(), "-b", library, "-d", dbPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Books path: "+library)
	assert.Contains(t, out, "Database: "+dbPath)
	assert.Contains(t, out, "From: 2026-01-25")
	assert.Contains(t, out, "To: 2026-01-31")
	assert.Contains(t, out, "Test Book by Test Author: 2 new, 0 already stored")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	count, err := db.CountHighlights()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImport_SecondRunStoresNothingNew(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")

	_, err := execute(t, context.Background(), "import", "-b", library, "-d", dbPath)
	require.NoError(t, err)

	out, err := execute(t, context.Background(), "import", "-b", library, "-d", dbPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Test Book by Test Author: 0 new, 2 already stored")
}

func TestImport_DateFlags(t *testing.T) {
	library := setupLibrary(t)

	tests := []struct {
		name     string
		args     []string
		from, to string
		matches  bool
	}{
		{
			name:    "last days",
			args:    []string{"--last", "3"},
			from:    "2026-01-29",
			to:      "2026-01-31",
			matches: false,
		},
		{
			name:    "explicit range",
			args:    []string{"--from", "2026-01-26", "--to", "2026-01-26"},
			from:    "2026-01-26",
			to:      "2026-01-26",
			matches: true,
		},
		{
			name:    "from only",
			args:    []string{"--from", "2026-01-01"},
			from:    "2026-01-01",
			to:      "2026-01-31",
			matches: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dry-run", "-b", library}, tt.args...)

			out, err := execute(t, context.Background(), args...)

			require.NoError(t, err)
			assert.Contains(t, out, "From: "+tt.from)
			assert.Contains(t, out, "To: "+tt.to)
			if tt.matches {
				assert.Contains(t, out, "Test Book by Test Author")
			} else {
				assert.NotContains(t, out, "Test Book by Test Author")
			}
		})
	}
}

func TestImport_DateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
	}{
		{"bad format", []string{"--from", "2026/01/01"}, config.ErrInvalidDateFormat},
		{"inverted range", []string{"--from", "2026-01-31", "--to", "2026-01-01"}, config.ErrInvalidDateRange},
		{"to without from", []string{"--to", "2026-01-01"}, config.ErrMissingFromDate},
		{"last with from", []string{"--last", "7", "--from", "2026-01-01"}, config.ErrMutuallyExclusiveFlags},
		{"last zero", []string{"--last", "0"}, config.ErrInvalidDateRange},
		{"last zero with from", []string{"--from", "2026-01-10", "--last", "0"}, config.ErrMutuallyExclusiveFlags},
		{"last zero with to", []string{"--to", "2026-01-20", "-l", "0"}, config.ErrMutuallyExclusiveFlags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "highlights.db")

			_, err := execute(t, context.Background(), append([]string{"-b", t.TempDir(), "-d", dbPath}, tt.args...)...)

			assert.ErrorIs(t, err, tt.err)
			assert.NoFileExists(t, dbPath)
		})
	}
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")
	outputDir := filepath.Join(t.TempDir(), "markdown")

	out, err := execute(t, context.Background(), "--dry-run", "-b", library, "-d", dbPath, "-o", outputDir)

	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.Contains(t, out, "Test Book by Test Author: 2 highlights")
	assert.NoFileExists(t, dbPath)
	assert.NoDirExists(t, outputDir)
}

func TestImport_ExportsMarkdown(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")
	outputDir := filepath.Join(t.TempDir(), "markdown")

	out, err := execute(t, context.Background(), "-b", library, "-d", dbPath, "-o", outputDir)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported books:      1")
	assert.FileExists(t, filepath.Join(outputDir, "Test Book.md"))
}

func TestImport_ExportKeepsHighlightsOfEarlierRuns(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")
	outputDir := filepath.Join(t.TempDir(), "markdown")
	notePath := filepath.Join(outputDir, "Test Book.md")

	_, err := execute(t, context.Background(), "-b", library, "-d", dbPath, "-o", outputDir, "--from", "2026-01-25", "--to", "2026-01-25")
	require.NoError(t, err)
	_, err = execute(t, context.Background(), "-b", library, "-d", dbPath, "-o", outputDir, "--from", "2026-01-26", "--to", "2026-01-26")
	require.NoError(t, err)

	note, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(note), "This is a highlighted text")
	assert.Contains(t, string(note), "Another highlight")

	// A narrower run with nothing new leaves the note alone.
	_, err = execute(t, context.Background(), "-b", library, "-d", dbPath, "-o", outputDir, "--from", "2026-01-25", "--to", "2026-01-25")
	require.NoError(t, err)

	note, err = os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(note), "Another highlight")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	pending, err := db.GetUnprocessed()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestImport_ReportsBrokenFiles(t *testing.T) {
	library := setupLibrary(t)
	broken := filepath.Join(library, "Broken.sdr", "metadata.epub.lua")
	require.NoError(t, os.MkdirAll(filepath.Dir(broken), 0755))
	require.NoError(t, os.WriteFile(broken, []byte("return {"), 0644))

	out, err := execute(t, context.Background(), "--dry-run", "-b", library)

	require.NoError(t, err)
	assert.Contains(t, out, "! "+broken)
	assert.Contains(t, out, "Files failed:        1")
}

func TestImport_MissingBooksPath(t *testing.T) {
	_, err := execute(t, context.Background(), "--dry-run", "-b", filepath.Join(t.TempDir(), "unmounted"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_RejectsArguments(t *testing.T) {
	_, err := execute(t, context.Background(), "import", "unexpected")

	assert.Error(t, err)
}

func TestSchedule_InvalidSchedule(t *testing.T) {
	_, err := execute(t, context.Background(), "schedule", "--schedule", "every day", "-d", filepath.Join(t.TempDir(), "h.db"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
}

func TestSchedule_RejectsDryRun(t *testing.T) {
	_, err := execute(t, context.Background(), "schedule", "--dry-run")

	assert.Error(t, err)
}

func TestSchedule_RunNowThenStop(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := execute(t, ctx, "schedule", "--run-now", "-b", library, "-d", dbPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Schedule: 0 7 * * * (Daily at 07:00)")
	assert.Contains(t, out, "Shutting down...")

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	count, err := db.CountHighlights()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestExport_WritesPendingBooksOnce(t *testing.T) {
	library := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "highlights.db")
	outputDir := filepath.Join(t.TempDir(), "markdown")

	_, err := execute(t, context.Background(), "-b", library, "-d", dbPath)
	require.NoError(t, err)

	out, err := execute(t, context.Background(), "export", "-d", dbPath, "-o", outputDir)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 books (2 highlights)")
	assert.FileExists(t, filepath.Join(outputDir, "Test Book.md"))

	out, err = execute(t, context.Background(), "export", "-d", dbPath, "-o", outputDir)

	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 books (0 highlights)")
}

func TestExport_RequiresOutputDir(t *testing.T) {
	t.Setenv("MARKDOWN_OUTPUT_DIR", "")
	dbPath := filepath.Join(t.TempDir(), "highlights.db")

	_, err := execute(t, context.Background(), "export", "-d", dbPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output directory")
	assert.NoFileExists(t, dbPath)
}

func TestImport_InvalidConfiguration(t *testing.T) {
	_, err := execute(t, context.Background(), "--dry-run", "--books-path", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
