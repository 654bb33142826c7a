package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/storage"
	"github.com/Tiliavir/reti/internal/store"
)

func clock(t *testing.T, h, m int) model.Clock {
	t.Helper()
	c, err := model.NewClock(h, m)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// sample builds a store spanning two years with open parts, factors and
// comments.
func sample(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	s.FeePerHour = 87.5

	d1 := model.Date{Year: 2016, Month: time.May, Day: 23}
	day := model.NewDay(d1,
		model.NewPart(clock(t, 8, 0), clock(t, 11, 30)).WithFactor(2),
		model.NewPart(clock(t, 12, 30), clock(t, 17, 59)),
		model.NewPart(clock(t, 22, 0), model.EndOfDay),
	)
	day.SetComment("foo bar")
	if _, err := s.AddDay(day); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddPart(model.Date{Year: 2016, Month: time.June, Day: 1}, model.OpenPart(clock(t, 9, 15))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddPart(model.Date{Year: 2017, Month: time.January, Day: 2}, model.NewPart(clock(t, 7, 0), clock(t, 8, 0)).WithFactor(0.5)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]storage.Kind{"json": storage.JSON, " SQLite ": storage.SQLite} {
		got, err := storage.ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := storage.ParseKind("csv"); err == nil {
		t.Error("ParseKind(csv) should fail")
	}
	if _, err := storage.Open("csv", "x", storage.Options{}); err == nil {
		t.Error("Open with an unknown kind should fail")
	}
}

func TestJSONLoadMissing(t *testing.T) {
	b, err := storage.Open(storage.JSON, filepath.Join(t.TempDir(), "times.json"), storage.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(s.Years) != 0 || s.FeePerHour != 0 {
		t.Errorf("Load on missing file = %+v, want empty store", s)
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for _, kind := range []storage.Kind{storage.JSON, storage.SQLite} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "data", "times."+string(kind))
			b, err := storage.Open(kind, path, storage.Options{})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer b.Close()

			want := sample(t)
			if err := b.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}

			// A second save replaces the snapshot entirely.
			small := store.New()
			small.FeePerHour = 10
			if _, err := small.AddPart(model.Date{Year: 2020, Month: time.March, Day: 3}, model.NewPart(clock(t, 8, 0), clock(t, 9, 0))); err != nil {
				t.Fatal(err)
			}
			if err := b.Save(ctx, small); err != nil {
				t.Fatalf("second Save: %v", err)
			}
			got, err = b.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, small) {
				t.Errorf("after overwrite got %+v, want %+v", got, small)
			}
		})
	}
}

func TestJSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "times.json")
	b, _ := storage.Open(storage.JSON, path, storage.Options{})
	s := store.New()
	d := model.Date{Year: 2017, Month: time.March, Day: 20}
	if _, err := s.AddPart(d, model.NewPart(clock(t, 8, 0), clock(t, 11, 30))); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"fee_per_hour":0,"years":[{"year":2017,"days":[{"date":"2017-03-20","parts":[{"start":"08:00","stop":"11:30","factor":null}],"comment":null}]}]}` + "\n"
	if string(data) != want {
		t.Errorf("compact file =\n%s\nwant\n%s", data, want)
	}

	pretty, _ := storage.Open(storage.JSON, path, storage.Options{Pretty: true})
	if err := pretty.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "\n  \"years\": [") {
		t.Errorf("pretty file is not indented:\n%s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestJSONCorruptIsBackedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "times.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, _ := storage.Open(storage.JSON, path, storage.Options{})
	if _, err := b.Load(context.Background()); err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err := os.Stat(path + ".corrupt"); os.IsNotExist(err) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestDecode(t *testing.T) {
	s, err := storage.Decode([]byte(`{"fee_per_hour":50,"years":null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Years == nil || s.FeePerHour != 50 {
		t.Errorf("Decode = %+v", s)
	}

	s, err = storage.Decode([]byte(`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":null,"comment":"x"}]}]}`))
	if err != nil {
		t.Fatalf("Decode null parts: %v", err)
	}
	if day := s.Day(2016, time.May, 23); day == nil || day.Parts == nil {
		t.Errorf("day = %+v, want empty parts", day)
	}

	bad := []string{
		`{"years":[{"year":2016,"days":[]},{"year":2016,"days":[]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2017-05-23","parts":[]}]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":[{"start":"12:00","stop":"10:00"}]}]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":[{"start":"25:00","stop":null}]}]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":[{"start":"08:00:99","stop":null}]}]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":[{"start":"08:00","stop":"09:00xyz"}]}]}]}`,
		`{"years":[{"year":2016,"days":[{"date":"2016-05-23","parts":[{"start":"24:00","stop":null}]}]}]}`,
	}
	for _, in := range bad {
		if _, err := storage.Decode([]byte(in)); err == nil {
			t.Errorf("Decode(%s) should fail", in)
		}
	}
}
