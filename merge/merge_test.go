package merge

import (
	"strings"
	"testing"

	"github.com/minios-linux/xlfsync/xliff"
)

const doc = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2">
  <file source-language="fr-FR" datatype="plaintext">
    <body>
      <trans-unit id="GREETING">
        <source>Hello</source>
        <target state="translated">Bonjour</target>
        <note>keep me</note>
      </trans-unit>
      <trans-unit id="BYE">
        <source>Bye (old)</source>
      </trans-unit>
    </body>
  </file>
</xliff>
`

func mustParse(t *testing.T, data string) *xliff.Document {
	t.Helper()
	d, err := xliff.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return d
}

func TestApply(t *testing.T) {
	d := mustParse(t, doc)

	st := Apply(d, []Entry{
		{ID: "GREETING", Source: "Hello", Target: "Salut"},
		{ID: "BYE", Source: "Bye", Target: ""},
		{ID: "NEW", Source: "New one", Target: "Nouveau"},
		{ID: "PENDING", Source: "Later", Target: "  "},
		{ID: "", Source: "ignored", Target: "x"},
	}, Options{})

	if st != (Stats{Updated: 1, Appended: 2}) {
		t.Fatalf("Apply() stats = %+v", st)
	}

	tgt, _ := d.Find("GREETING").Target()
	if tgt != "Salut" || d.Find("GREETING").TargetState() != xliff.StateFinal {
		t.Errorf("GREETING target = %q (%s)", tgt, d.Find("GREETING").TargetState())
	}
	if _, ok := d.Find("BYE").Target(); ok {
		t.Error("blank entry must not touch an existing unit")
	}

	n := d.Find("NEW")
	if n == nil {
		t.Fatal("NEW was not appended")
	}
	if src, _ := n.Source(); src != "New one" {
		t.Errorf("NEW source = %q", src)
	}
	if n.TargetState() != xliff.StateFinal {
		t.Errorf("NEW state = %q, want final", n.TargetState())
	}

	p := d.Find("PENDING")
	if p == nil {
		t.Fatal("PENDING was not appended")
	}
	if tgt, ok := p.Target(); !ok || tgt != "" || p.TargetState() != xliff.StateNew {
		t.Errorf("PENDING target = %q, %v, state %q", tgt, ok, p.TargetState())
	}

	data, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<note>keep me</note>") {
		t.Error("unrelated content lost")
	}
}

func TestApplyRewritesDriftedSource(t *testing.T) {
	d := mustParse(t, doc)

	st := Apply(d, []Entry{
		{ID: "GREETING", Source: "Hello there", Target: "Salut toi"},
		{ID: "BYE", Source: "Bye (new)", Target: ""},
	}, Options{})
	if st != (Stats{Updated: 1}) {
		t.Fatalf("Apply() stats = %+v", st)
	}

	g := d.Find("GREETING")
	src, _ := g.Source()
	tgt, _ := g.Target()
	if src != "Hello there" || tgt != "Salut toi" {
		t.Fatalf("GREETING = %q/%q, want source and target from the entry", src, tgt)
	}
	if src, _ := d.Find("BYE").Source(); src != "Bye (old)" {
		t.Fatalf("BYE source = %q, want unchanged without a translation", src)
	}
}

func TestApplyInvalidSourceLeavesUnit(t *testing.T) {
	d := mustParse(t, doc)
	var errs int
	st := Apply(d, []Entry{{ID: "GREETING", Source: "broken <b>", Target: "Salut"}},
		Options{OnError: func(string, ...any) { errs++ }})

	if st.Failed != 1 || errs != 1 {
		t.Fatalf("stats = %+v, errors = %d", st, errs)
	}
	if tgt, _ := d.Find("GREETING").Target(); tgt != "Bonjour" {
		t.Errorf("GREETING target = %q, want unchanged", tgt)
	}
}

func TestApplyReportsFailures(t *testing.T) {
	d := mustParse(t, doc)
	var errs []string
	opts := Options{OnError: func(format string, args ...any) {
		errs = append(errs, format)
	}}

	st := Apply(d, []Entry{
		{ID: "GREETING", Source: "Hello", Target: "broken <b>"},
		{ID: "BYE", Source: "Bye", Target: "Au revoir"},
	}, opts)

	if st.Failed != 1 || st.Updated != 1 || len(errs) != 1 {
		t.Fatalf("stats = %+v, errors = %v", st, errs)
	}
	if tgt, _ := d.Find("GREETING").Target(); tgt != "Bonjour" {
		t.Errorf("GREETING target = %q, want unchanged", tgt)
	}
}

func TestApplyWithoutBody(t *testing.T) {
	d := mustParse(t, `<xliff version="1.2"><file/></xliff>`)
	st := Apply(d, []Entry{{ID: "A", Source: "a", Target: "b"}}, Options{})
	if st.Failed != 1 {
		t.Fatalf("stats = %+v, want one failure", st)
	}
}

func TestFixSource(t *testing.T) {
	d := mustParse(t, doc)
	st := FixSource(d, map[string]string{
		"GREETING": "Hello",
		"BYE":      "Bye",
		"OTHER":    "unused",
	}, Options{})

	if st.Updated != 1 {
		t.Fatalf("FixSource() updated %d, want 1", st.Updated)
	}
	if src, _ := d.Find("BYE").Source(); src != "Bye" {
		t.Errorf("BYE source = %q, want Bye", src)
	}
}

func TestStatsAdd(t *testing.T) {
	s := Stats{Updated: 1}
	s.Add(Stats{Updated: 2, Appended: 3, Failed: 4})
	if s != (Stats{Updated: 3, Appended: 3, Failed: 4}) {
		t.Fatalf("Add() = %+v", s)
	}
}
