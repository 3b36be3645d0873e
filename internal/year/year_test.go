package year_test

import (
	"encoding/json"
	"testing"

	"github.com/Seednode/artquiz/internal/met"
	"github.com/Seednode/artquiz/internal/year"
)

func intPtr(v int) *int { return &v }

func TestOfPrefersBeginDate(t *testing.T) {
	t.Parallel()

	for _, v := range []int{-450, 1799, 1800, 2024} {
		got := year.Of(met.Object{BeginDate: intPtr(v), ObjectDate: "ca. 1650"})
		if !got.Known || got.Value != v {
			t.Fatalf("Of(begin=%d) = %+v", v, got)
		}
	}
}

func TestOfZeroBeginDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		obj  met.Object
		want year.Year
	}{
		{
			name: "undated",
			obj:  met.Object{ObjectDate: "n.d.", BeginDate: intPtr(0), EndDate: intPtr(0)},
			want: year.Unknown,
		},
		{
			name: "zero begin without end",
			obj:  met.Object{ObjectDate: "", BeginDate: intPtr(0)},
			want: year.Unknown,
		},
		{
			name: "zero dates with text year",
			obj:  met.Object{ObjectDate: "ca. 1650", BeginDate: intPtr(0), EndDate: intPtr(0)},
			want: year.Year{Value: 1650, Known: true},
		},
		{
			name: "range starting at year zero",
			obj:  met.Object{ObjectDate: "1st century", BeginDate: intPtr(0), EndDate: intPtr(99)},
			want: year.Year{Value: 0, Known: true},
		},
	}

	for _, tc := range cases {
		if got := year.Of(tc.obj); got != tc.want {
			t.Errorf("%s: Of() = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestOfUndatedCollectionRecord(t *testing.T) {
	t.Parallel()

	// Shape of an undated record as the collection API returns it.
	body := `{"objectID":436,"title":"Fragment","objectDate":"n.d.",` +
		`"objectBeginDate":0,"objectEndDate":0,"primaryImageSmall":"https://images.example.org/436.jpg"}`

	var obj met.Object
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		t.Fatal(err)
	}

	got := year.Of(obj)
	if got.Known {
		t.Fatalf("Of() = %+v, want unknown", got)
	}
	if got.Before(1800) {
		t.Fatal("an undated record must never count as before the cutoff")
	}
}

func TestOfFallsBackToDateString(t *testing.T) {
	t.Parallel()

	got := year.Of(met.Object{ObjectDate: "ca. 1825"})
	if !got.Known || got.Value != 1825 {
		t.Fatalf("Of(ca. 1825) = %+v", got)
	}
	if got.Before(1800) {
		t.Fatal("1825 should not be before 1800")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want year.Year
	}{
		{in: "1800", want: year.Year{Value: 1800, Known: true}},
		{in: "ca. 1750", want: year.Year{Value: 1750, Known: true}},
		{in: "1800-1850", want: year.Year{Value: 1800, Known: true}},
		{in: "1750s", want: year.Year{Value: 1750, Known: true}},
		{in: "late 19th century, ca. 1885", want: year.Year{Value: 1885, Known: true}},
		{in: "-450", want: year.Year{Value: -450, Known: true}},
		{in: "ca. -300", want: year.Year{Value: -300, Known: true}},
		{in: "(-664) or later", want: year.Year{Value: -664, Known: true}},
		{in: "19th century", want: year.Year{Value: 19, Known: true}},
		{in: "dynasty 12", want: year.Year{Value: 12, Known: true}},
		{in: "n.d.", want: year.Unknown},
		{in: "", want: year.Unknown},
		{in: "undated", want: year.Unknown},
	}

	for _, tc := range cases {
		if got := year.Parse(tc.in); got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestBeforeIsStrict(t *testing.T) {
	t.Parallel()

	if (year.Year{Value: 1800, Known: true}).Before(1800) {
		t.Fatal("1800 must not count as before 1800")
	}
	if !(year.Year{Value: 1799, Known: true}).Before(1800) {
		t.Fatal("1799 must count as before 1800")
	}
	if !(year.Year{Value: -450, Known: true}).Before(1800) {
		t.Fatal("-450 must count as before 1800")
	}
	if year.Unknown.Before(1800) {
		t.Fatal("unknown must never count as before")
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if got := year.Unknown.String(); got != "unknown" {
		t.Fatalf("Unknown.String() = %q", got)
	}
	if got := (year.Year{Value: -450, Known: true}).String(); got != "-450" {
		t.Fatalf("String() = %q", got)
	}
}
