package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/extract"
	"github.com/fwojciec/htmlanalyzer/goquery"
	"github.com/fwojciec/htmlanalyzer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ htmlanalyzer.Analyzer = (*goquery.Analyzer)(nil)

func staticFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			markup, ok := pages[url]
			if !ok {
				return "", htmlanalyzer.Errorf(htmlanalyzer.ENOTFOUND, "page not found: %s", url)
			}
			return markup, nil
		},
		CloseFn: func() error { return nil },
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("extracts the static page", func(t *testing.T) {
		t.Parallel()

		// Given a page with resources, sounds and styled elements
		fetcher := staticFetcher(map[string]string{
			"http://127.0.0.1:3000/a.html": `<html><head>
<title>A</title>
<link rel="stylesheet" href="site.css">
<script src="app.js"></script>
</head><body>
<section id="soundsection" data-tap="tap.mp3"></section>
<div class="x  y" style="color: rgb(1, 2, 3); background-image: url('img/bg.png')" role="main">
  <style>.x{}</style>
  <p>Hi</p>
</div>
</body></html>`,
		})
		analyzer := goquery.NewAnalyzer(fetcher)

		// When it is analyzed
		result, err := analyzer.Analyze(context.Background(), "http://127.0.0.1:3000/a.html")

		// Then the analysis has no screenshot and uses inline styles as written
		require.NoError(t, err)
		assert.Nil(t, result.Screenshot)
		assert.Equal(t, "http://127.0.0.1:3000/a.html", result.URL)

		a := result.Analysis
		assert.Equal(t, "A", a.PageInfo.Title)
		require.Len(t, a.Stylesheets, 1)
		assert.Equal(t, "site.css", *a.Stylesheets[0])
		require.Len(t, a.Scripts, 1)
		assert.Equal(t, "app.js", *a.Scripts[0])
		assert.Equal(t, htmlanalyzer.Fields{
			{Name: "id", Value: "soundsection"},
			{Name: "data-tap", Value: "tap.mp3"},
		}, a.Sounds)

		require.Len(t, a.Elements, 4)
		assert.Equal(t, []string{"body", "section", "div", "p"}, []string{
			a.Elements[0].Tag, a.Elements[1].Tag, a.Elements[2].Tag, a.Elements[3].Tag,
		})
		assert.Equal(t, []int{1, 2, 2, 3}, []int{
			a.Elements[0].Depth, a.Elements[1].Depth, a.Elements[2].Depth, a.Elements[3].Depth,
		})

		div := a.Elements[2]
		assert.Equal(t, "x,y", div.ClassName)
		assert.Equal(t, htmlanalyzer.Fields{{Name: "role", Value: "main"}}, div.OtherAttr)
		assert.Equal(t, htmlanalyzer.Size{}, div.Size)
		assert.Equal(t, htmlanalyzer.Fields{
			{Name: "color", Value: "rgb(1, 2, 3)"},
			{Name: "background-image", Value: "url('img/bg.png')"},
		}, div.Styles.Computed)
	})

	t.Run("wraps fetch failures", func(t *testing.T) {
		t.Parallel()

		analyzer := goquery.NewAnalyzer(staticFetcher(nil))

		_, err := analyzer.Analyze(context.Background(), "http://127.0.0.1:3000/missing.html")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to analyze page")
		assert.Equal(t, htmlanalyzer.ENOTFOUND, htmlanalyzer.ErrorCode(err))
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		t.Parallel()

		called := false
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				called = true
				return "", nil
			},
		}
		analyzer := goquery.NewAnalyzer(fetcher)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := analyzer.Analyze(ctx, "http://127.0.0.1:3000/a.html")

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("applies extract options", func(t *testing.T) {
		t.Parallel()

		fetcher := staticFetcher(map[string]string{
			"u": `<html><body><nav><a>x</a></nav><p>y</p></body></html>`,
		})
		analyzer := goquery.NewAnalyzer(fetcher,
			goquery.WithExtractOptions(extract.WithExcludedTags([]string{"nav"})))

		result, err := analyzer.Analyze(context.Background(), "u")

		require.NoError(t, err)
		require.Len(t, result.Analysis.Elements, 2)
		assert.Equal(t, "p", result.Analysis.Elements[1].Tag)
	})
}

func TestAnalyzer_Close(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("close failed")
	analyzer := goquery.NewAnalyzer(&mock.Fetcher{CloseFn: func() error { return closeErr }})

	assert.ErrorIs(t, analyzer.Close(), closeErr)
}
