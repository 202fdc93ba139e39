package analyze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const healthyPage = `<html lang="en"><head>
	<title>Healthy Page</title>
	<meta name="description" content="All good here">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head><body>
	<h1>Welcome</h1>
	<a href="/about">About us</a>
	<img src="a.jpg" alt="described">
</body></html>`

func TestAutoTester_HealthyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(healthyPage))
	}))
	defer srv.Close()

	report := NewAutoTester().Run(context.Background(), srv.URL)

	assert.True(t, report.Success)
	assert.Equal(t, "Healthy", report.Status)
	assert.Equal(t, "All QA tests passed! Your website looks healthy.", report.Summary)
	assert.Equal(t, http.StatusOK, report.StatusCode)
	assert.Empty(t, report.Issues)
	assert.Contains(t, report.ChecksPassed, "Has one H1 heading")
	assert.Contains(t, report.ChecksPassed, "Has viewport meta (mobile-friendly)")
	assert.Contains(t, report.ChecksPassed, "Has 1 valid links")
	assert.Contains(t, report.ChecksPassed, "Has lang attribute (en)")
}

func TestAutoTester_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	report := NewAutoTester().Run(context.Background(), srv.URL)

	assert.False(t, report.Success)
	assert.Equal(t, "Error", report.Status)
	assert.Equal(t, http.StatusInternalServerError, report.StatusCode)
	assert.Contains(t, report.Summary, "Critical: Server returned error 500")
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, "Server error 500", report.Issues[0].Title)
}

func TestAutoTester_BarePageGetsIssues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer srv.Close()

	report := NewAutoTester().Run(context.Background(), srv.URL)

	assert.True(t, report.Success)
	assert.Equal(t, "Needs work", report.Status)

	titles := make(map[string]bool)
	for _, iss := range report.Issues {
		titles[iss.Title] = true
		assert.NotEmpty(t, iss.CodeFix)
		assert.NotEmpty(t, iss.StepsToFix)
	}
	assert.True(t, titles["Missing page title"])
	assert.True(t, titles["Missing meta description"])
	assert.True(t, titles["Missing H1 heading"])
	assert.True(t, titles["Not mobile-friendly"])
	assert.True(t, titles["No links on page"])
	assert.True(t, titles["Missing language attribute"])
}

func TestAutoTester_EmptyLinksFlagged(t *testing.T) {
	page := `<html lang="en"><head><title>T</title>
		<meta name="description" content="d"><meta name="viewport" content="w"></head>
		<body><h1>H</h1><a href="#"></a><a href="/real">Real</a></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	report := NewAutoTester().Run(context.Background(), srv.URL)

	assert.Contains(t, report.ChecksPassed, "Has 2 links")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "1 empty or broken links", report.Issues[0].Title)
	assert.Equal(t, "Needs attention", report.Status)
}

func TestAutoTester_MissingAltFlagged(t *testing.T) {
	page := `<html lang="en"><head><title>T</title>
		<meta name="description" content="d"><meta name="viewport" content="w"></head>
		<body><h1>H</h1><a href="/x">x</a><img src="a.jpg"><img src="b.jpg" alt="ok"></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	report := NewAutoTester().Run(context.Background(), srv.URL)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, "1 images missing alt text", report.Issues[0].Title)
}

func TestAutoTester_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	report := NewAutoTester().Run(context.Background(), url)

	assert.False(t, report.Success)
	assert.Equal(t, "Error", report.Status)
	assert.Zero(t, report.StatusCode)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, "Connection failed", report.Issues[0].Title)
}

func TestIsTimeoutErr(t *testing.T) {
	assert.True(t, isTimeoutErr(context.DeadlineExceeded))
	assert.False(t, isTimeoutErr(assert.AnError))
}
