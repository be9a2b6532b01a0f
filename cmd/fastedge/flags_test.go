package main

import (
	"os"
	"path/filepath"
	"testing"

	"fastedge.dev"
)

func TestDenyFlags(t *testing.T) {
	var f denyFlags
	if err := f.Set("dictionary:private"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("secret-store"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("kv-store:x"); err == nil {
		t.Error("expected an unknown kind to be rejected")
	}

	if len(f) != 2 || f[0].kind != fastedge.CapabilityDictionary || f[0].name != "private" || f[1].name != "" {
		t.Errorf("unexpected denials %v", f)
	}
	if got := f.String(); got != "dictionary:private, secret-store" {
		t.Errorf("unexpected String() %q", got)
	}
}

func TestStoreFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	if err := os.WriteFile(path, []byte(`{"color": "blue"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	f := make(storeFlags)
	if err := f.Set("colors=" + path); err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	v, found, err := f["colors"].fn("color")
	if err != nil || !found || v != "blue" {
		t.Errorf("expected blue, got %q, %t, %v", v, found, err)
	}

	if err := f.Set("colors"); err == nil {
		t.Error("expected a missing file name to be rejected")
	}
}

func TestCheckScriptNames(t *testing.T) {
	ok := storeFlags{"colors": {}}
	secrets := secretStoreFlags{"edge-secrets": {}}
	loggers := loggerFlags{"access.log": {}}

	if err := checkScriptNames(ok, ok, secrets, loggers); err != nil {
		t.Errorf("expected valid names to pass, got %v", err)
	}

	for _, tc := range []struct {
		dictionaries, configStores storeFlags
		secrets                    secretStoreFlags
		loggers                    loggerFlags
	}{
		{storeFlags{"edge-dict": {}}, ok, secrets, loggers},
		{ok, storeFlags{"1st": {}}, secrets, loggers},
		{ok, ok, secretStoreFlags{"has space": {}}, loggers},
		{ok, ok, secrets, loggerFlags{"_stdout": {}}},
	} {
		if err := checkScriptNames(tc.dictionaries, tc.configStores, tc.secrets, tc.loggers); err == nil {
			t.Errorf("expected names to be rejected: %v %v %v %v", tc.dictionaries, tc.configStores, tc.secrets, tc.loggers)
		}
	}
}
