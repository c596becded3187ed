// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"newsbombs/internal/models"
)

func day(n int) models.Date {
	return models.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n))
}

func art(slug string, d int, tags ...string) models.Article {
	return models.Article{Title: slug, Slug: slug, Date: day(d), Tags: tags}
}

func slugs(items []models.Article) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.Slug
	}
	return out
}

// numbered returns n public articles p1..pn with p1 the oldest.
func numbered(n int) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		out[i] = art(fmt.Sprintf("p%d", i+1), i)
	}
	return out
}

func TestPublic(t *testing.T) {
	items := []models.Article{art("a", 1), art("b", 2), art("c", 3)}
	items[1].Draft = true

	got := slugs(Public(items))
	if want := []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Public = %v, want %v", got, want)
	}
}

func TestSortByDateDesc(t *testing.T) {
	items := []models.Article{art("old", 1), art("new", 5), art("tie1", 3), art("tie2", 3)}

	got := slugs(SortByDateDesc(items))
	want := []string{"new", "tie1", "tie2", "old"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByDateDesc = %v, want %v", got, want)
	}
	if items[0].Slug != "old" {
		t.Error("SortByDateDesc must not reorder its input")
	}
}

func TestPaginate(t *testing.T) {
	items := numbered(12)

	tests := []struct {
		name       string
		page, size int
		want       []string
		totalPages int
	}{
		{"first page", 1, 5, []string{"p1", "p2", "p3", "p4", "p5"}, 3},
		{"middle page", 2, 5, []string{"p6", "p7", "p8", "p9", "p10"}, 3},
		{"short last page", 3, 5, []string{"p11", "p12"}, 3},
		{"past the end", 4, 5, []string{}, 3},
		{"page zero", 0, 5, []string{}, 3},
		{"negative page", -1, 5, []string{}, 3},
		{"default size", 1, 0, []string{"p1", "p2", "p3", "p4", "p5"}, 3},
		{"single page", 1, 20, slugs(items), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			if got := slugs(p.Items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("items = %v, want %v", got, tt.want)
			}
			if p.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.totalPages)
			}
			if p.Total != 12 {
				t.Errorf("Total = %d, want 12", p.Total)
			}
		})
	}
}

func TestPageOutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		n, page    int
		outOfRange bool
	}{
		{"first page", 12, 1, false},
		{"last page", 12, 3, false},
		{"past the end", 12, 4, true},
		{"page zero", 12, 0, true},
		{"empty list first page", 0, 1, false},
		{"empty list second page", 0, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Paginate(numbered(tt.n), tt.page, 5).OutOfRange(); got != tt.outOfRange {
				t.Errorf("OutOfRange = %v, want %v", got, tt.outOfRange)
			}
		})
	}
}

func TestPaginateTotalPagesIsCeiling(t *testing.T) {
	for n := 0; n <= 21; n++ {
		for _, size := range []int{1, 2, 5, 7} {
			want := n / size
			if n%size != 0 {
				want++
			}
			if got := Paginate(numbered(n), 1, size).TotalPages; got != want {
				t.Errorf("N=%d P=%d: TotalPages = %d, want %d", n, size, got, want)
			}
		}
	}
}

func TestPageNavigation(t *testing.T) {
	p := Paginate(numbered(12), 2, 5)
	if !p.HasPrev() || !p.HasNext() || p.PrevNumber() != 1 || p.NextNumber() != 3 {
		t.Errorf("middle page navigation wrong: %+v", p)
	}
	first := Paginate(numbered(12), 1, 5)
	if first.HasPrev() {
		t.Error("first page should have no previous page")
	}
	last := Paginate(numbered(12), 3, 5)
	if last.HasNext() {
		t.Error("last page should have no next page")
	}
}

func TestByTag(t *testing.T) {
	items := []models.Article{art("a", 1, "go", "web"), art("b", 2, "web"), art("c", 3, "Go")}

	if got := slugs(ByTag(items, "web")); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ByTag(web) = %v", got)
	}
	if got := slugs(ByTag(items, "go")); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("ByTag(go) should be case-sensitive, got %v", got)
	}
	if got := ByTag(items, "missing"); len(got) != 0 {
		t.Errorf("ByTag(missing) = %v", slugs(got))
	}
}

func TestTagCounts(t *testing.T) {
	items := []models.Article{
		art("a", 1, "tin tức", "AI"),
		art("b", 2, "AI", "công nghệ"),
		art("c", 3, "AI", "tin tức"),
		art("d", 4, "Việt Nam", "Việt Nam"),
		art("e", 5),
	}

	got := TagCounts(items)
	want := []TagCount{
		{"AI", 3},
		{"Việt Nam", 2},
		{"tin tức", 2},
		{"công nghệ", 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagCounts = %v, want %v", got, want)
	}

	m := TagMap(got)
	if m["AI"] != 3 || m["công nghệ"] != 1 || len(m) != 4 {
		t.Errorf("TagMap = %v", m)
	}

	if got := TagCounts(nil); len(got) != 0 {
		t.Errorf("TagCounts(nil) = %v", got)
	}
}

func TestNeighbours(t *testing.T) {
	sorted := []models.Article{art("newest", 3), art("middle", 2), art("oldest", 1)}

	tests := []struct {
		slug       string
		prev, next string
	}{
		{"middle", "oldest", "newest"},
		{"newest", "middle", ""},
		{"oldest", "", "middle"},
		{"absent", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			prev, next := Neighbours(sorted, tt.slug)
			if got := slugOf(prev); got != tt.prev {
				t.Errorf("prev = %q, want %q", got, tt.prev)
			}
			if got := slugOf(next); got != tt.next {
				t.Errorf("next = %q, want %q", got, tt.next)
			}
		})
	}
}

func slugOf(a *models.Article) string {
	if a == nil {
		return ""
	}
	return a.Slug
}

func TestHome(t *testing.T) {
	items := numbered(20)
	items[19].Draft = true // p20 would otherwise be the newest
	items[18].Tags = []string{"AI"}
	items[2].Tags = []string{"AI", "Lịch sử"}

	v := Home(items, "")
	if v.Featured == nil || v.Featured.Slug != "p19" {
		t.Fatalf("featured = %v, want p19", slugOf(v.Featured))
	}
	if got := slugs(v.Latest); !reflect.DeepEqual(got, []string{"p18", "p17", "p16", "p15", "p14", "p13", "p12", "p11"}) {
		t.Errorf("latest = %v", got)
	}
	if got := slugs(v.More); !reflect.DeepEqual(got, []string{"p10", "p9", "p8", "p7", "p6", "p5", "p4", "p3"}) {
		t.Errorf("more = %v", got)
	}
	if !reflect.DeepEqual(v.Tags, []string{"AI", "Lịch sử"}) || !reflect.DeepEqual(v.Trending, v.Tags) {
		t.Errorf("tags = %v trending = %v", v.Tags, v.Trending)
	}

	tagged := Home(items, "AI")
	if tagged.Featured != nil {
		t.Error("a tag-filtered home page has no featured post")
	}
	if got := slugs(tagged.Latest); !reflect.DeepEqual(got, []string{"p19", "p3"}) {
		t.Errorf("tagged latest = %v", got)
	}
	if len(tagged.More) != 0 || tagged.Trending != nil || tagged.SelectedTag != "AI" {
		t.Errorf("tagged view: %+v", tagged)
	}
}

func TestHomeEmpty(t *testing.T) {
	v := Home(nil, "")
	if v.Featured != nil || len(v.Latest) != 0 || len(v.More) != 0 {
		t.Errorf("empty home: %+v", v)
	}
}
