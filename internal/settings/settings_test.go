package settings

import (
	"errors"
	"io/fs"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"selected_theme", false},
		{"a/b", false},
		{"with space", false},
		{"", true},
		{"nul\x00byte", true},
		{"\xffkey", true},
		{"ключ", false},
	}
	for _, tt := range tests {
		err := ValidateKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) error = %v, want ErrInvalidKey", tt.key, err)
		}
	}
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"midnight", false},
		{"<<", false},
		{"multi\nline", false},
		{"ünïcødé 🎉", false},
		{"\xff\xfe", true},
		{"nul\x00byte", true},
	}
	for _, tt := range tests {
		err := ValidateValue(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateValue(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ValidateValue(%q) error = %v, want ErrInvalidValue", tt.value, err)
		}
	}

	if err := ValidateEntry("", "v"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ValidateEntry(empty key) error = %v, want ErrInvalidKey", err)
	}
	if err := ValidateEntry("k", "\xff"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ValidateEntry(bad value) error = %v, want ErrInvalidValue", err)
	}
}

func TestValidateDomain(t *testing.T) {
	valid := []string{"com.mash.party.preferences", "prefs", "my-domain"}
	for _, d := range valid {
		if err := ValidateDomain(d); err != nil {
			t.Errorf("ValidateDomain(%q) unexpected error: %v", d, err)
		}
	}

	invalid := []string{"", ".", "..", ".hidden", "a/b", "a\\b"}
	for _, d := range invalid {
		err := ValidateDomain(d)
		if err == nil {
			t.Errorf("ValidateDomain(%q) should fail", d)
			continue
		}
		if !errors.Is(err, ErrInvalidDomain) {
			t.Errorf("ValidateDomain(%q) error = %v, want ErrInvalidDomain", d, err)
		}
	}
}

func TestOrDefault(t *testing.T) {
	got, err := OrDefault("v", true, nil, "d")
	if err != nil || got != "v" {
		t.Errorf("OrDefault(present) = %q, %v; want %q, nil", got, err, "v")
	}

	got, err = OrDefault("", false, nil, "d")
	if err != nil || got != "d" {
		t.Errorf("OrDefault(absent) = %q, %v; want %q, nil", got, err, "d")
	}

	got, err = OrDefault("", false, nil, "")
	if err != nil || got != "" {
		t.Errorf("OrDefault(absent, empty default) = %q, %v; want empty, nil", got, err)
	}

	fault := errors.New("boom")
	got, err = OrDefault("", false, fault, "d")
	if !errors.Is(err, fault) {
		t.Errorf("OrDefault(fault) error = %v, want %v", err, fault)
	}
	if got != "d" {
		t.Errorf("OrDefault(fault) = %q, want default", got)
	}
}

func TestStorageError(t *testing.T) {
	err := Fault("put", "prefs", "k", fs.ErrPermission)

	if !errors.Is(err, ErrStorage) {
		t.Error("errors.Is(err, ErrStorage) = false, want true")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("StorageError should unwrap to the underlying error")
	}

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatal("errors.As(*StorageError) = false")
	}
	if se.Op != "put" || se.Domain != "prefs" || se.Key != "k" {
		t.Errorf("StorageError fields = %+v", se)
	}

	want := `settings put prefs["k"]: permission denied`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if Fault("clear", "prefs", "", nil) != nil {
		t.Error("Fault(nil) should return nil")
	}
	if got := Fault("clear", "prefs", "", fs.ErrPermission).Error(); got != "settings clear prefs: permission denied" {
		t.Errorf("domain-wide Error() = %q", got)
	}
}
