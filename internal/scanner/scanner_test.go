package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

// layout creates dirs (trailing entries of dirs) and files under a temp
// root and returns the root.
func layout(t *testing.T, dirs []string, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestPhotosFiltersByExtension(t *testing.T) {
	root := layout(t, nil, []string{"a.jpg", "b.JPG", "c.png", "notes.txt"})

	photos, err := New("jpg", "").Photos(root)
	if err != nil {
		t.Fatal(err)
	}

	got := names(photos)
	if len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.JPG" {
		t.Errorf("photos = %v, want case-insensitive jpg matches", got)
	}
	for _, p := range photos {
		if !filepath.IsAbs(p) {
			t.Errorf("path %s not absolute", p)
		}
	}
}

func TestPhotosExcludesSubstring(t *testing.T) {
	root := layout(t,
		[]string{"@eaDir/sub"},
		[]string{"real.jpg", "SYNOPHOTO_THUMB_M_real.jpg", "@eaDir/sub/thumb.jpg"},
	)

	photos, err := New("jpg", "SYNOPHOTO_THUMB").Photos(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 1 || filepath.Base(photos[0]) != "real.jpg" {
		t.Errorf("photos = %v, want only real.jpg", names(photos))
	}
}

func TestPhotosSkipsReservedAndHiddenDirs(t *testing.T) {
	root := layout(t,
		[]string{"keep", "@eaDir", "#recycle", ".hidden"},
		[]string{"keep/a.jpg", "@eaDir/b.jpg", "#recycle/c.jpg", ".hidden/d.jpg"},
	)

	photos, err := New("jpg", "").Photos(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 1 || filepath.Base(photos[0]) != "a.jpg" {
		t.Errorf("photos = %v, want only keep/a.jpg", names(photos))
	}
}

func TestPhotosRecursesNestedFolders(t *testing.T) {
	root := layout(t, []string{"y2020/summer"}, []string{"top.jpg", "y2020/mid.jpg", "y2020/summer/deep.jpg"})

	photos, err := New("jpg", "").Photos(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 3 {
		t.Errorf("photos = %v, want all 3 levels", names(photos))
	}
}

func TestSubfoldersImmediate(t *testing.T) {
	root := layout(t, []string{"a", "b/nested", "@eaDir", ".hidden"}, nil)

	folders, err := New("jpg", "").Subfolders(root, false)
	if err != nil {
		t.Fatal(err)
	}
	got := names(folders)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("folders = %v, want [a b]", got)
	}
}

func TestSubfoldersRecursive(t *testing.T) {
	root := layout(t, []string{"a", "b/nested", "@eaDir/inside"}, nil)

	folders, err := New("jpg", "").Subfolders(root, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 3 {
		t.Errorf("folders = %v, want a, b, b/nested", folders)
	}
}

func TestPhotosEmptyDir(t *testing.T) {
	photos, err := New("jpg", "").Photos(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 0 {
		t.Errorf("photos = %v, want none", photos)
	}
}
