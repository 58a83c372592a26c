package userlist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestUserListManager(t *testing.T) {
	// Point the data directory at a temp dir
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	t.Run("EmptyByDefault", func(t *testing.T) {
		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if mgr.Exists() {
			t.Error("Expected no list file before the first save")
		}

		list, err := mgr.Load()
		if err != nil {
			t.Fatalf("Failed to load list: %v", err)
		}
		if len(list.Users) != 0 {
			t.Errorf("Expected empty list, got %v", list.Users)
		}
	})

	t.Run("SetAndLoad", func(t *testing.T) {
		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		if _, err := mgr.Set([]string{"@BBCNews", " nytimes ", "bbcnews", ""}); err != nil {
			t.Fatalf("Failed to set list: %v", err)
		}

		// A second manager sees the same file
		mgr2, _ := NewManager("")
		list, err := mgr2.Load()
		if err != nil {
			t.Fatalf("Failed to load list: %v", err)
		}

		want := []string{"BBCNews", "nytimes"}
		if !reflect.DeepEqual(list.Users, want) {
			t.Errorf("Expected %v, got %v", want, list.Users)
		}
		if list.UpdatedAt.IsZero() {
			t.Error("Expected UpdatedAt to be set")
		}
		if filepath.Base(mgr2.Path()) != FileName {
			t.Errorf("Unexpected path %s", mgr2.Path())
		}
	})

	t.Run("Clear", func(t *testing.T) {
		mgr, _ := NewManager("")
		if err := mgr.Clear(); err != nil {
			t.Fatalf("Failed to clear list: %v", err)
		}
		if mgr.Exists() {
			t.Error("Expected list file to be gone")
		}
		// Clearing twice is fine
		if err := mgr.Clear(); err != nil {
			t.Errorf("Second clear failed: %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "nested", "list.json"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := mgr.Resolve(nil); err == nil {
		t.Error("Expected an error with no args and no saved list")
	}

	if _, err := mgr.Set([]string{"alice", "bob"}); err != nil {
		t.Fatal(err)
	}

	got, err := mgr.Resolve(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("Expected saved list, got %v", got)
	}

	got, _ = mgr.Resolve([]string{"@carol"})
	if !reflect.DeepEqual(got, []string{"carol"}) {
		t.Errorf("Expected args to win, got %v", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	mgr, _ := NewManager(path)
	if _, err := mgr.Load(); err == nil {
		t.Error("Expected decode error")
	}
}

func TestCheckScreenName(t *testing.T) {
	valid := []string{"bbc", "BBCNews", "jaxa_en", "a", "abcdefghij12345"}
	for _, name := range valid {
		if err := CheckScreenName(name); err != nil {
			t.Errorf("Expected %q to be valid, got %v", name, err)
		}
	}

	invalid := []string{"", "../etc", "a/b", "has space", "dash-name", "abcdefghij123456", "émile"}
	for _, name := range invalid {
		if err := CheckScreenName(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

func TestResolveRejectsInvalidNames(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "list.json"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := mgr.Resolve([]string{"nasa", "a/b"}); err == nil {
		t.Error("Expected Resolve to reject a name containing /")
	}
	if _, err := mgr.Set([]string{"ok", "../up"}); err == nil {
		t.Error("Expected Set to reject a path-like name")
	}
	if mgr.Exists() {
		t.Error("Expected nothing to be saved after a rejected Set")
	}
}
