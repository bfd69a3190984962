package catalog

import (
	"reflect"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{n: 0, size: 50, want: 0},
		{n: 1, size: 50, want: 1},
		{n: 50, size: 50, want: 1},
		{n: 51, size: 50, want: 2},
		{n: 151, size: 50, want: 4},
		{n: 1302, size: 50, want: 27},
		{n: 10, size: 0, want: 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name        string
		page, total int
		want        int
	}{
		{name: "in range", page: 3, total: 4, want: 3},
		{name: "past end", page: 27, total: 1, want: 1},
		{name: "zero", page: 0, total: 4, want: 1},
		{name: "negative", page: -2, total: 4, want: 1},
		{name: "empty list", page: 5, total: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.page, tt.total); got != tt.want {
				t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.total, got, tt.want)
			}
		})
	}
}

func TestClampPage_AlwaysValid(t *testing.T) {
	// For every reachable state the clamped page addresses a real page,
	// or page 1 when there are none.
	for total := 0; total <= 30; total++ {
		for page := -3; page <= 35; page++ {
			got := ClampPage(page, total)
			if got < 1 {
				t.Fatalf("ClampPage(%d, %d) = %d, below 1", page, total, got)
			}
			if total > 0 && got > total {
				t.Fatalf("ClampPage(%d, %d) = %d, above total", page, total, got)
			}
		}
	}
}

func TestPaginate(t *testing.T) {
	list := entriesNamed(numberedNames(7)...)

	tests := []struct {
		name string
		page int
		want []string
	}{
		{name: "first page", page: 1, want: []string{"poke-1", "poke-2", "poke-3"}},
		{name: "middle page", page: 2, want: []string{"poke-4", "poke-5", "poke-6"}},
		{name: "partial last page", page: 3, want: []string{"poke-7"}},
		{name: "past end", page: 4, want: []string{}},
		{name: "page zero", page: 0, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := namesOf(Paginate(list, tt.page, 3))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paginate(page=%d) = %v, want %v", tt.page, got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	list := entriesNamed(numberedNames(10)...)

	if got := namesOf(Window(list, 8, 5)); !reflect.DeepEqual(got, []string{"poke-9", "poke-10"}) {
		t.Errorf("Window clipped = %v", got)
	}
	if got := Window(list, 10, 5); len(got) != 0 {
		t.Errorf("Window past end = %v, want empty", namesOf(got))
	}
	if got := Window(list, 0, 0); len(got) != 0 {
		t.Errorf("Window with n=0 = %v, want empty", namesOf(got))
	}
}

func TestSearch(t *testing.T) {
	list := entriesNamed("bulbasaur", "charmander", "charmeleon", "charizard", "squirtle")

	tests := []struct {
		name string
		term string
		want []string
	}{
		{name: "substring", term: "char", want: []string{"charmander", "charmeleon", "charizard"}},
		{name: "case insensitive", term: "CHAR", want: []string{"charmander", "charmeleon", "charizard"}},
		{name: "trimmed", term: "  saur ", want: []string{"bulbasaur"}},
		{name: "blank returns all", term: "   ", want: []string{"bulbasaur", "charmander", "charmeleon", "charizard", "squirtle"}},
		{name: "no match", term: "pika", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := namesOf(Search(list, tt.term))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestIntersect_KeepsPrimaryOrder(t *testing.T) {
	primary := entriesNamed("charizard", "bulbasaur", "moltres")
	other := entriesNamed("bulbasaur", "charizard", "pikachu")

	got := namesOf(Intersect(primary, other))
	want := []string{"charizard", "bulbasaur"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
}
