package archive

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"matchdata/internal/record"
)

func rec(pairs ...any) record.Record {
	r := record.New(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(record.Value))
	}
	return r
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	records, err := Read(context.Background(), filepath.Join(t.TempDir(), "missing.parquet"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestReadCorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.parquet")
	if err := os.WriteFile(path, []byte("not parquet"), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := Read(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for corrupt archive")
	}
	if len(records) != 0 {
		t.Fatalf("expected no records on error, got %d", len(records))
	}
}

func TestWriteZeroRecordsIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rendimiento_5.parquet")

	wrote, err := Write(context.Background(), path, nil)
	if err != nil || wrote {
		t.Fatalf("Write = (%v, %v), want (false, nil)", wrote, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("filesystem touched: %v", entries)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendimiento_fisico.parquet")
	in := []record.Record{
		rec(
			"Nombre", record.String("Parejo"),
			"Distancia", record.Number(10234.5),
			"Sprints", record.Number(12),
			"Titular", record.Bool(true),
			"Jornada", record.String("J15"),
			"id_jugador", record.Number(1001),
		),
		rec(
			"Nombre", record.String("Baena"),
			"Distancia", record.Number(9800),
			"Sprints", record.Null(),
			"Titular", record.Bool(false),
			"Jornada", record.Null(),
			"id_jugador", record.Number(1002),
		),
	}

	wrote, err := Write(context.Background(), path, in)
	if err != nil || !wrote {
		t.Fatalf("Write = (%v, %v)", wrote, err)
	}

	out, err := Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("read %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if !reflect.DeepEqual(out[i].Keys(), in[i].Keys()) {
			t.Fatalf("record %d keys = %v, want %v", i, out[i].Keys(), in[i].Keys())
		}
		for _, key := range in[i].Keys() {
			want, _ := in[i].Get(key)
			got, _ := out[i].Get(key)
			if !got.Equal(want) {
				t.Errorf("record %d %s = %v (%s), want %v (%s)", i, key, got.Text(), got.Kind(), want.Text(), want.Kind())
			}
		}
	}

	sprints, _ := out[0].Get("Sprints")
	if sprints.Kind() != record.KindInt {
		t.Fatalf("integral column should read back as int, got %s", sprints.Kind())
	}
	distance, _ := out[1].Get("Distancia")
	if distance.Kind() != record.KindNumber {
		t.Fatalf("fractional column should read back as double, got %s", distance.Kind())
	}
}

func TestWriteReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "maxima_exigencia.parquet")

	first := []record.Record{rec("equipo", record.String("Villarreal CF"), "id_jugador", record.Number(1))}
	if _, err := Write(ctx, path, first); err != nil {
		t.Fatal(err)
	}
	existing, err := Read(ctx, path)
	if err != nil {
		t.Fatal(err)
	}

	merged := append(existing, rec("equipo", record.String("Sevilla FC"), "id_jugador", record.Number(2), "extra", record.Number(0.5)))
	if _, err := Write(ctx, path, merged); err != nil {
		t.Fatal(err)
	}

	out, err := Read(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("read %d records, want 2", len(out))
	}
	if v, _ := out[0].Get("extra"); !v.IsNull() {
		t.Fatalf("column missing from earlier rows must be null, got %v", v.Text())
	}
	if v, _ := out[1].Get("equipo"); v.Text() != "Sevilla FC" {
		t.Fatalf("equipo = %q", v.Text())
	}
}

func TestInferSchemaWidens(t *testing.T) {
	records := []record.Record{
		rec("a", record.Number(1), "b", record.Number(1), "c", record.Bool(true), "d", record.Null(), "e", record.Int(3)),
		rec("a", record.Number(2.5), "b", record.String("x"), "c", record.Bool(false), "f", record.Number(7)),
		rec("e", record.Number(4), "c", record.Number(1)),
	}
	got := InferSchema(records)
	want := []Column{
		{"a", TypeDouble},
		{"b", TypeText},
		{"c", TypeText},
		{"d", TypeText},
		{"e", TypeInt64},
		{"f", TypeInt64},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InferSchema = %v\nwant %v", got, want)
	}
}

func TestMixedColumnWrittenAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.parquet")
	in := []record.Record{
		rec("valor", record.Number(7)),
		rec("valor", record.String("n/a")),
	}
	if _, err := Write(context.Background(), path, in); err != nil {
		t.Fatal(err)
	}
	out, err := Read(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := out[0].Get("valor")
	if first.Kind() != record.KindString || first.Text() != "7" {
		t.Fatalf("valor = %v (%s)", first.Text(), first.Kind())
	}
}
