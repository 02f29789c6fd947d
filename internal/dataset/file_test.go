package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileSourceLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "economy.csv", "\xef\xbb\xbfyear, gdp_growth\n2015,3.0\n2020,4.0\n")

	df, err := NewFileSource(dir).Load(context.Background(), "economy.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"year", "gdp_growth"}, df.Headers)
	assert.Len(t, df.Rows, 2)
	assert.Equal(t, "economy.csv", df.FileName)
	assert.Equal(t, filepath.Join(dir, "economy.csv"), df.FilePath)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(t.TempDir()).Load(context.Background(), "nope.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSourceRejectsEscapingRefs(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "data")
	require.NoError(t, os.Mkdir(dir, 0o755))
	writeFile(t, parent, "secret.csv", "password,year\nhunter2,2020\n")

	src := NewFileSource(dir)
	for _, ref := range []string{"../secret.csv", filepath.Join(parent, "secret.csv"), "a/../../secret.csv", ""} {
		_, err := src.Load(context.Background(), ref)
		assert.ErrorIs(t, err, ErrNotFound, "ref %q", ref)
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "economy.csv", "year,gdp\n2020,1\n")
	_, err := src.Load(context.Background(), "sub/../sub/economy.csv")
	assert.NoError(t, err)
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource(t.TempDir()).Load(ctx, "economy.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCSVSemicolon(t *testing.T) {
	df, err := ParseCSV([]byte("year;literacy_rate\n2019;99.1\n2020;99.3\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"year", "literacy_rate"}, df.Headers)
	assert.Equal(t, []string{"2020", "99.3"}, df.Rows[1])
}

func TestParseCSVVariableFields(t *testing.T) {
	df, err := ParseCSV([]byte("current_value,target_value\n72\n74,80\n"))
	require.NoError(t, err)

	assert.Len(t, df.Rows, 2)
	assert.Equal(t, []string{"72"}, df.Rows[0])
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV([]byte(""))
	assert.Error(t, err)
}

func TestFileSourceLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Year", "life_expectancy"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{2018, 71.2}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2022, 72.5}))

	dir := t.TempDir()
	require.NoError(t, f.SaveAs(filepath.Join(dir, "health.xlsx")))
	require.NoError(t, f.Close())

	df, err := NewFileSource(dir).Load(context.Background(), "health.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "life_expectancy"}, df.Headers)
	require.Len(t, df.Rows, 2)
	assert.Equal(t, "2022", df.Rows[1][0])
	assert.Equal(t, "72.5", df.Rows[1][1])
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "abc", cellString([]byte("abc")))
	assert.Equal(t, "2019", cellString(int64(2019)))
	assert.Equal(t, "3.5", cellString(3.5))
	assert.Equal(t, "true", cellString(true))
	assert.Equal(t, "2020-01-01", cellString(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}
