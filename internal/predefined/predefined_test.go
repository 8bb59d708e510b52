package predefined

import (
	"testing"

	"github.com/lighttime0/RSC/internal/summary"
)

func has(base *summary.Base, name string) bool {
	_, ok := base.Get(nil, name)
	return ok
}

func TestParseFamilies(t *testing.T) {
	cases := []struct {
		csv  string
		want Family
	}{
		{"kref", Kref},
		{"kref,py", Kref | Py},
		{"dpm,ffs,py", DPM | FFS | Py},
		{"", 0},
		{"bogus", 0},
	}
	for _, c := range cases {
		if got := ParseFamilies(c.csv); got != c.want {
			t.Errorf("ParseFamilies(%q) = %v, want %v", c.csv, got, c.want)
		}
	}
}

func TestLoadRegistersOnlyEnabledFamilies(t *testing.T) {
	base := summary.NewBase()
	Load(base, Kref)

	if !has(base, "kref_get") {
		t.Errorf("kref_get should be registered when Kref is enabled")
	}
	if has(base, "_Py_INCREF") {
		t.Errorf("_Py_INCREF should not be registered when Py is disabled")
	}
}

func TestLoadAllRegistersEveryName(t *testing.T) {
	base := summary.NewBase()
	Load(base, All)

	for _, want := range []string{
		"kref_init", "kref_get", "kref_get_unless_zero",
		"kref_put", "kref_put_spinlock_irqsave", "kref_put_mutex",
		"kobject_get", "kobject_get_unless_zero@kobject",
		"kobject_init_internal@kobject", "kobject_put",
		"pm_runtime_get", "pm_runtime_put",
		"ffs_data_new", "ffs_data_get", "ffs_data_put",
		"_Py_INCREF", "_Py_DECREF", "PyErr_SetObject",
		"PyObject_SetAttrString", "PyList_Append", "PyDict_New",
	} {
		if !has(base, want) {
			t.Errorf("Load(All) did not register %q", want)
		}
	}
}

func TestGetNoReturnSingleEntryUnconditionalIncrement(t *testing.T) {
	s := getNoReturn("kref_get", 1, "kref")
	if len(s.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(s.Entries))
	}
	e := s.Entries[0]
	if !e.PC.IsTrue() {
		t.Errorf("PC = %v, want True", e.PC)
	}
	op, ok := e.Ops["[1]:kref"]
	if !ok || op.Amount != 1 {
		t.Errorf("Ops[\"[1]:kref\"] = %+v, want amount 1", op)
	}
	if e.Ret != "" {
		t.Errorf("Ret = %q, want empty", e.Ret)
	}
}

func TestPutNoReturnDecrements(t *testing.T) {
	s := putNoReturn("kref_put", 1, "kref")
	op := s.Entries[0].Ops["[1]:kref"]
	if op.Amount != -1 {
		t.Errorf("Amount = %d, want -1", op.Amount)
	}
}

func TestGetNewSplitsOnNullReturn(t *testing.T) {
	s := getNew("ffs_data_new", "ffs")
	if len(s.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(s.Entries))
	}
	ok, fail := s.Entries[0], s.Entries[1]
	if ok.Ret != "[0]" {
		t.Errorf("success entry Ret = %q, want [0]", ok.Ret)
	}
	if op := ok.Ops["[0]:ffs"]; op == nil || op.Amount != 1 {
		t.Errorf("success entry missing +1 on [0]:ffs, got %+v", ok.Ops)
	}
	if fail.Ret != "0" {
		t.Errorf("failure entry Ret = %q, want literal 0", fail.Ret)
	}
	if len(fail.Ops) != 0 {
		t.Errorf("failure entry should carry no refcount ops, got %+v", fail.Ops)
	}
}

func TestNoopNoretHasNoEntries(t *testing.T) {
	s := noopNoret("kobject_put")
	if len(s.Entries) != 0 {
		t.Errorf("noopNoret should produce zero entries, got %d", len(s.Entries))
	}
	if !s.IsPure() {
		t.Errorf("an entry-free summary should be vacuously pure")
	}
}

func TestNoopRetAliasesTargetSignature(t *testing.T) {
	s := noopRet("kobject_get", 1)
	if len(s.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(s.Entries))
	}
	if s.Entries[0].Ret != "[1]" {
		t.Errorf("Ret = %q, want [1]", s.Entries[0].Ret)
	}
	if len(s.Entries[0].Ops) != 0 {
		t.Errorf("noopRet should carry no refcount ops, got %+v", s.Entries[0].Ops)
	}
}
