package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/archcheck/model"
)

func sampleReport() *model.Report {
	r := &model.Report{
		RunID:     "run-1",
		Project:   "web.app",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Files:     3,
		Violations: []model.Violation{
			{
				Rule: "jsdoc/require-jsdoc", Family: model.FamilyJSDoc, Severity: model.SeverityWarning,
				File: "src/features/comics/services/server.service.ts", Line: 4,
				Message: "missing JSDoc comment on exported function getComics",
			},
			{
				Rule: "resource-boundary/outside-repository", Family: model.FamilyResourceBoundary, Severity: model.SeverityError,
				File: "src/features/comics/actions/server.action.ts", Line: 3,
				Message: `@/lib/* can only be imported from repositories (resource-boundary violation): "@/lib/client"`,
			},
			{
				Rule: "naming/services", Family: model.FamilyNaming, Severity: model.SeverityError,
				File: "src/features/comics/services/pay,pal.service.ts",
				Message: "file name does not match {client|server}.service.ts\nsecond line",
			},
		},
	}
	r.Finalize()
	return r
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("sarif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github, json, markdown, text")
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := GetFormatInfo(FormatMarkdown)
	require.True(t, ok)
	assert.Equal(t, ".md", info.Extension)

	_, ok = GetFormatInfo("turtle")
	assert.False(t, ok)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatText, Options{}))
	out := buf.String()

	actions := strings.Index(out, "src/features/comics/actions/server.action.ts\n")
	services := strings.Index(out, "src/features/comics/services/server.service.ts\n")
	require.GreaterOrEqual(t, actions, 0)
	require.Greater(t, services, actions, "files are listed in report order")

	assert.Contains(t, out, "      3  error    @/lib/* can only be imported")
	assert.Contains(t, out, "resource-boundary/outside-repository")
	assert.Contains(t, out, "      -  error    file name does not match")
	assert.True(t, strings.HasSuffix(out, "✗ 3 files checked, 2 errors, 1 warnings\n"))
}

func TestWriteText_QuietAndPassed(t *testing.T) {
	r := &model.Report{Files: 1, Violations: []model.Violation{
		{Rule: "jsdoc/require-jsdoc", Severity: model.SeverityWarning, File: "a.ts", Message: "m"},
	}}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r, FormatText, Options{Quiet: true}))
	assert.Equal(t, "✓ 1 files checked, 0 errors, 1 warnings\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatJSON, Options{}))

	var decoded model.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.False(t, decoded.Passed)
	require.Len(t, decoded.Violations, 3)
	assert.Equal(t, "resource-boundary/outside-repository", decoded.Violations[0].Rule)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, &model.Report{Passed: true}))
	assert.Contains(t, buf.String(), `"violations": []`)
}

func TestWriteGitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatGitHub, Options{}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		`::error file=src/features/comics/actions/server.action.ts,line=3,title=resource-boundary/outside-repository::@/lib/* can only be imported from repositories (resource-boundary violation): "@/lib/client"`,
		lines[0])
	assert.Equal(t,
		`::error file=src/features/comics/services/pay%2Cpal.service.ts,title=naming/services::file name does not match {client|server}.service.ts%0Asecond line`,
		lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "::warning file=src/features/comics/services/server.service.ts,line=4,"))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatMarkdown, Options{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "### Architecture check: ❌ Failed\n"))
	assert.Contains(t, out, "| Severity | File | Line | Rule | Message |")
	assert.Contains(t, out, "{client\\|server}.service.ts second line |")
	assert.Contains(t, out, "| error | `src/features/comics/actions/server.action.ts` | 3 | `resource-boundary/outside-repository` |")

	buf.Reset()
	require.NoError(t, WriteMarkdown(&buf, &model.Report{Passed: true, Files: 2}, Options{}))
	assert.Equal(t, "### Architecture check: ✅ Passed\n\n2 files checked, 0 errors, 0 warnings.\n", buf.String())
}

type fakeConn struct {
	subject string
	data    []byte
	pubErr  error
	flushed bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.pubErr != nil {
		return c.pubErr
	}
	c.subject, c.data = subject, data
	return nil
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("context requires a deadline")
	}
	c.flushed = true
	return nil
}

func TestNATSPublisher(t *testing.T) {
	conn := &fakeConn{}
	p := NewNATSPublisher(conn, "", nil)

	require.NoError(t, p.Publish(context.Background(), sampleReport()))
	assert.Equal(t, "archcheck.report.web_app", conn.subject)
	assert.True(t, conn.flushed)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(conn.data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &fakeConn{pubErr: errors.New("connection closed")}
	p := NewNATSPublisher(conn, "ci.reports", nil)

	err := p.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish report")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Publish(ctx, sampleReport())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportSubject(t *testing.T) {
	assert.Equal(t, "archcheck.report.shop", ReportSubject("shop"))
	assert.Equal(t, "archcheck.report.my_app_v2", ReportSubject("my app.v2"))
	assert.Equal(t, "archcheck.report.default", ReportSubject(""))
}
