package lib

import (
	"slices"
	"testing"
)

func stringToInt(input string) int {
	return len(input)
}

func TestMapPreservesOrder(t *testing.T) {
	array := []string{"temperature_c", "odo", "salinity_ppt"}

	intArray := Map(array, stringToInt)

	for index, elem := range intArray {
		if len(array[index]) != elem {
			t.Fatalf(`Have %d want %d`, elem, len(array[index]))
		}
	}
}

func TestFilterFilterAll(t *testing.T) {
	values := []int{1, 2, 3, 4, 5}

	newValues := Filter(values, func(n int) bool {
		return false
	})

	if len(newValues) != 0 {
		t.Fatalf(`Expected value was 0`)
	}
}

func TestFilterFilterNone(t *testing.T) {
	values := []int{1, 2, 3, 4, 5}

	newValues := Filter(values, func(n int) bool {
		return true
	})

	if !slices.Equal(values, newValues) {
		t.Fatalf(`Expected lists to be the same`)
	}
}

func TestFilterFilterSome(t *testing.T) {
	values := []int{1, 2, 3, 4, 5}
	expected := []int{1, 2}

	actual := Filter(values, func(n int) bool {
		return n < 3
	})

	if !slices.Equal(expected, actual) {
		t.Fatalf(`Expected expected and actual to be the same`)
	}
}

func TestPageWindow(t *testing.T) {
	values := []int{1, 2, 3, 4, 5}

	page := Page(values, 1, 2)

	if !slices.Equal(page, []int{2, 3}) {
		t.Fatalf(`Expected [2 3] got %v`, page)
	}
}

func TestPageSkipPastEnd(t *testing.T) {
	values := []int{1, 2, 3}

	page := Page(values, 10, 2)

	if len(page) != 0 {
		t.Fatalf(`Expected empty page got %v`, page)
	}
}

func TestPageLimitPastEnd(t *testing.T) {
	values := []int{1, 2, 3}

	page := Page(values, 1, 100)

	if !slices.Equal(page, []int{2, 3}) {
		t.Fatalf(`Expected [2 3] got %v`, page)
	}
}

func TestPageNoLimit(t *testing.T) {
	values := []int{1, 2, 3}

	page := Page(values, 0, 0)

	if !slices.Equal(page, values) {
		t.Fatalf(`Expected the entire slice got %v`, page)
	}
}
