package engine

import (
	"strings"
	"testing"
	"time"

	"newsbombs/internal/listing"
	"newsbombs/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New("NewsBombs", "Tin tức")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func article(slug string, day int, tags ...string) models.Article {
	return models.Article{
		Title:   "Post " + slug,
		Slug:    slug,
		Content: "Body of **" + slug + "**",
		Date:    models.NewDate(time.Date(2024, 12, day, 0, 0, 0, 0, time.UTC)),
		Tags:    tags,
		Layout:  models.LayoutPost,
	}
}

func assertContains(t *testing.T, html []byte, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(string(html), w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func assertNotContains(t *testing.T, html []byte, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(string(html), w) {
			t.Errorf("output should not contain %q", w)
		}
	}
}

func TestNewParsesAllPages(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"home", "list", "post_layout", "post_simple", "post_banner", "tags", "not_found"} {
		if _, ok := e.templates[name]; !ok {
			t.Errorf("template %q not parsed", name)
		}
	}
	if _, ok := e.templates["base"]; ok {
		t.Error("base layout should not be a page")
	}
}

func TestRenderPostLayouts(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		layout string
		class  string
	}{
		{models.LayoutPost, "post-layout"},
		{models.LayoutSimple, "post-simple"},
		{models.LayoutBanner, "post-banner"},
		{"Unknown", "post-layout"},
		{"", "post-layout"},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			a := article("hello", 2)
			a.Layout = tt.layout
			a.Images = []string{"/uploads/file-1.png"}

			html, err := e.RenderPost(&a, nil, nil)
			if err != nil {
				t.Fatalf("RenderPost: %v", err)
			}
			assertContains(t, html, `class="post `+tt.class+`"`, "<strong>hello</strong>", "Post hello | NewsBombs")
		})
	}
}

func TestRenderPostBannerImage(t *testing.T) {
	e := newTestEngine(t)
	a := article("banner", 2)
	a.Layout = models.LayoutBanner
	a.Content = "![x](/uploads/inline.png)\n\ntext"

	html, err := e.RenderPost(&a, nil, nil)
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	assertContains(t, html, `<div class="banner"><img src="/uploads/inline.png"`)
}

func TestRenderPostNavigation(t *testing.T) {
	e := newTestEngine(t)
	a := article("middle", 2)
	prev := article("older", 1)
	next := article("2024/newer", 3)

	html, err := e.RenderPost(&a, &prev, &next)
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	assertContains(t, html, `href="/blog/older"`, `href="/blog/2024/newer"`, "Post older", "Post 2024/newer")

	alone, _ := e.RenderPost(&a, nil, nil)
	assertNotContains(t, alone, `class="post-nav"`)
}

func TestRenderPostSanitizesContent(t *testing.T) {
	e := newTestEngine(t)
	a := article("xss", 2)
	a.Content = `<p>ok</p><script>alert("x")</script>`
	a.Title = `<b>Bold</b> title`

	html, err := e.RenderPost(&a, nil, nil)
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	assertContains(t, html, "<p>ok</p>", "&lt;b&gt;Bold&lt;/b&gt; title")
	assertNotContains(t, html, "<script>alert")
}

func TestRenderPostLastmod(t *testing.T) {
	e := newTestEngine(t)
	a := article("mod", 2)
	lm := models.NewDate(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	a.Lastmod = &lm

	html, err := e.RenderPost(&a, nil, nil)
	if err != nil {
		t.Fatalf("RenderPost: %v", err)
	}
	assertContains(t, html, "January 5, 2025", `datetime="2024-12-02"`)
}

func TestRenderHome(t *testing.T) {
	e := newTestEngine(t)
	items := []models.Article{article("a", 1, "AI"), article("b", 2, "Lịch sử"), article("c", 3)}
	summary := "Tóm tắt"
	items[2].Summary = &summary

	html, err := e.RenderHome(listing.Home(items, ""), []listing.TagCount{{Tag: "AI", Count: 1}})
	if err != nil {
		t.Fatalf("RenderHome: %v", err)
	}
	assertContains(t, html, "Tin nổi bật", "Post c", "Tóm tắt", "Tin mới nhất", "Chủ đề nổi bật", `href="/tags/AI"`, "2025 NewsBombs")

	tagged, err := e.RenderHome(listing.Home(items, "missing"), nil)
	if err != nil {
		t.Fatalf("RenderHome(tag): %v", err)
	}
	assertContains(t, tagged, "Không tìm thấy bài viết nào")
	assertNotContains(t, tagged, "Tin nổi bật")
}

func TestRenderList(t *testing.T) {
	e := newTestEngine(t)
	var items []models.Article
	for d := 1; d <= 12; d++ {
		items = append(items, article(strings.Repeat("p", d), d))
	}

	first, err := e.RenderList("Tất cả bài viết", listing.Paginate(items, 1, 5), nil)
	if err != nil {
		t.Fatalf("RenderList: %v", err)
	}
	assertContains(t, first, "Tất cả bài viết", "1 / 3", `href="/blog/page/2"`)
	assertNotContains(t, first, `rel="prev"`)

	second, _ := e.RenderList("All Posts", listing.Paginate(items, 2, 5), nil)
	assertContains(t, second, `rel="prev" href="/blog"`, `rel="next" href="/blog/page/3"`)

	empty, _ := e.RenderList("All Posts", listing.Paginate(items, 9, 5), nil)
	assertContains(t, empty, "Chưa có bài viết nào")
}

func TestRenderTagList(t *testing.T) {
	e := newTestEngine(t)
	items := make([]models.Article, 7)
	for i := range items {
		items[i] = article("t"+strings.Repeat("x", i), i+1, "công nghệ")
	}

	html, err := e.RenderTagList("công nghệ", listing.Paginate(items, 1, 5), nil)
	if err != nil {
		t.Fatalf("RenderTagList: %v", err)
	}
	assertContains(t, html, "#công nghệ", `href="/tags/c%C3%B4ng%20ngh%E1%BB%87/page/2"`)
}

func TestRenderTags(t *testing.T) {
	e := newTestEngine(t)
	html, err := e.RenderTags([]listing.TagCount{{Tag: "AI", Count: 3}, {Tag: "22/12", Count: 1}})
	if err != nil {
		t.Fatalf("RenderTags: %v", err)
	}
	assertContains(t, html, "(3)", `href="/tags/AI"`, `href="/tags/22%2F12"`)

	none, _ := e.RenderTags(nil)
	assertContains(t, none, "Chưa có tag nào")
}

func TestRenderNotFound(t *testing.T) {
	e := newTestEngine(t)
	html, err := e.RenderNotFound("/blog/missing")
	if err != nil {
		t.Fatalf("RenderNotFound: %v", err)
	}
	assertContains(t, html, "404", "could not be found")
}

func TestURLHelpers(t *testing.T) {
	if got := postURL("2024/tin tức"); got != "/blog/2024/tin%20t%E1%BB%A9c" {
		t.Errorf("postURL = %q", got)
	}
	if got := tagURL("a/b"); got != "/tags/a%2Fb" {
		t.Errorf("tagURL = %q", got)
	}
	for _, tt := range []struct {
		n    int
		want string
	}{{0, "/blog"}, {1, "/blog"}, {2, "/blog/page/2"}} {
		if got := pageURL("/blog", tt.n); got != tt.want {
			t.Errorf("pageURL(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestExcerptFallsBackToContent(t *testing.T) {
	a := article("x", 1)
	a.Content = "# Heading\n\n" + strings.Repeat("word ", 100)
	got := excerpt(a)
	if !strings.HasPrefix(got, "Heading word") || !strings.HasSuffix(got, "…") {
		t.Errorf("excerpt = %q", got)
	}

	s := "  "
	a.Summary = &s
	if got := excerpt(a); !strings.HasPrefix(got, "Heading") {
		t.Errorf("blank summary should fall back to content, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := models.NewDate(time.Date(2024, 12, 22, 0, 0, 0, 0, time.UTC))
	if got := formatDate(d); got != "December 22, 2024" {
		t.Errorf("formatDate(Date) = %q", got)
	}
	if got := formatDate(&d); got != "December 22, 2024" {
		t.Errorf("formatDate(*Date) = %q", got)
	}
	var nilDate *models.Date
	if got := formatDate(nilDate); got != "" {
		t.Errorf("formatDate(nil) = %q", got)
	}
	if got := formatDate(models.Date{}); got != "" {
		t.Errorf("formatDate(zero) = %q", got)
	}
}
