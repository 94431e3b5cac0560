package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestIDList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IDList
		wantErr bool
	}{
		{
			name:  "bare strings",
			input: `["1", "2"]`,
			want:  IDList{"1", "2"},
		},
		{
			name:  "wrapper objects",
			input: `[{"id": "1"}, {"id": "2"}]`,
			want:  IDList{"1", "2"},
		},
		{
			name:  "mixed shapes",
			input: `["1", {"id": "2"}]`,
			want:  IDList{"1", "2"},
		},
		{
			name:  "wrapper without id dropped",
			input: `[{"other": "x"}, "1"]`,
			want:  IDList{"1"},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  IDList{},
		},
		{
			name:    "not an array",
			input:   `"1"`,
			wantErr: true,
		},
		{
			name:    "unparseable entry",
			input:   `[42]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got IDList
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIDList_Contains(t *testing.T) {
	l := IDList{"1", "2"}
	if !l.Contains("1") {
		t.Error("Contains(\"1\") = false")
	}
	if l.Contains("3") {
		t.Error("Contains(\"3\") = true")
	}
	if (IDList)(nil).Contains("1") {
		t.Error("nil list Contains() = true")
	}
}

func TestThread_RoundTrip(t *testing.T) {
	in := NewThread("t1")
	in.LastUpdate = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in.Name = "General"
	in.AdminIDs = IDList{"1", "2"}
	in.Permissions = map[string][]string{"3": {"mod"}}
	in.NSFW = true
	in.IsGroup = true

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out Thread
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&out, in) {
		t.Errorf("round trip = %+v, want %+v", &out, in)
	}
}

func TestThread_CloneIsIndependent(t *testing.T) {
	orig := NewThread("t1")
	orig.AdminIDs = IDList{"1"}
	orig.Permissions = map[string][]string{"2": {"mod"}}
	orig.Data = map[string]any{"k": "v"}

	cp := orig.Clone()
	cp.AdminIDs = append(cp.AdminIDs, "9")
	cp.Permissions["2"] = append(cp.Permissions["2"], "admin")
	cp.Permissions["3"] = []string{"user"}
	cp.Data["k"] = "changed"

	if orig.AdminIDs.Contains("9") {
		t.Error("Clone() shares the admin list")
	}
	if len(orig.Permissions["2"]) != 1 {
		t.Errorf("Clone() shares a permission slice: %v", orig.Permissions["2"])
	}
	if _, ok := orig.Permissions["3"]; ok {
		t.Error("Clone() shares the permission map")
	}
	if orig.Data["k"] != "v" {
		t.Errorf("Clone() shares the data map: %v", orig.Data["k"])
	}
}

func TestUser_CloneIsIndependent(t *testing.T) {
	orig := NewUser("u1")
	orig.Permissions = []string{"mod"}
	orig.Data = map[string]any{"k": "v"}

	cp := orig.Clone()
	cp.Permissions = append(cp.Permissions, "admin")
	cp.Data["k"] = "changed"

	if len(orig.Permissions) != 1 {
		t.Errorf("Clone() shares the permission slice: %v", orig.Permissions)
	}
	if orig.Data["k"] != "v" {
		t.Errorf("Clone() shares the data map: %v", orig.Data["k"])
	}
}
