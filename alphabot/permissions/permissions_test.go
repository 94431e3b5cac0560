package permissions

import (
	"reflect"
	"testing"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

func TestResolver_Resolve(t *testing.T) {
	resolver := NewResolver([]string{"1"}, []string{"2"})

	thread := models.NewThread("t1")
	thread.AdminIDs = models.IDList{"3"}
	thread.Permissions = map[string][]string{
		"4": {"mod"},
		"7": {}, // empty override falls through
	}

	userWithMod := models.NewUser("5")
	userWithMod.Permissions = []string{"mod"}

	tests := []struct {
		name   string
		userID string
		thread *models.Thread
		user   *models.User
		want   Set
	}{
		{
			name:   "absolute gets global admin tags",
			userID: "1",
			thread: thread,
			want:   NewSet(TagAdmin, TagSupperAdmin),
		},
		{
			name:   "config admin gets global admin tags",
			userID: "2",
			thread: thread,
			want:   NewSet(TagAdmin, TagSupperAdmin),
		},
		{
			name:   "thread admin",
			userID: "3",
			thread: thread,
			want:   NewSet(TagThreadAdmin, TagAdmin),
		},
		{
			name:   "thread override wins over stored user perms",
			userID: "4",
			thread: thread,
			user: func() *models.User {
				u := models.NewUser("4")
				u.Permissions = []string{"admin"}
				return u
			}(),
			want: NewSet(TagMod),
		},
		{
			name:   "stored user permissions",
			userID: "5",
			thread: thread,
			user:   userWithMod,
			want:   NewSet(TagMod),
		},
		{
			name:   "plain user",
			userID: "6",
			thread: thread,
			user:   models.NewUser("6"),
			want:   NewSet(TagUser),
		},
		{
			name:   "empty thread override falls through to user",
			userID: "7",
			thread: thread,
			user:   models.NewUser("7"),
			want:   NewSet(TagUser),
		},
		{
			name:   "nil records",
			userID: "8",
			want:   NewSet(TagUser),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.userID, tt.thread, tt.user)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestResolver_Deterministic(t *testing.T) {
	resolver := NewResolver(nil, nil)
	thread := models.NewThread("t1")
	user := models.NewUser("9")
	user.Permissions = []string{"mod", "thread_admin"}

	first := resolver.Resolve("9", thread, user)
	for i := 0; i < 10; i++ {
		if got := resolver.Resolve("9", thread, user); !reflect.DeepEqual(got, first) {
			t.Fatalf("Resolve() varied across calls: %v vs %v", got, first)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		levels []int
		tags   Set
		want   bool
	}{
		{"plain user passes level 0", []int{0}, NewSet(TagUser), true},
		{"global admin passes level 0", []int{0}, NewSet(TagAdmin, TagSupperAdmin), true},
		{"thread admin passes level 0", []int{0}, NewSet(TagThreadAdmin, TagAdmin), true},
		{"plain user denied level 1", []int{1}, NewSet(TagUser), false},
		{"plain user denied level 2", []int{2}, NewSet(TagUser), false},
		{"plain user denied level 3", []int{3}, NewSet(TagUser), false},
		{"mod passes level 1", []int{1}, NewSet(TagMod), true},
		{"thread admin passes level 2", []int{2}, NewSet(TagThreadAdmin), true},
		{"admin passes level 3", []int{3}, NewSet(TagAdmin), true},
		{"supper admin passes level 3", []int{3}, NewSet(TagSupperAdmin), true},
		{"supper admin denied level 2", []int{2}, NewSet(TagSupperAdmin), false},
		{"any listed level suffices", []int{0, 2}, NewSet(TagUser), true},
		{"empty levels fail closed", nil, NewSet(TagAdmin), false},
		{"empty tags fail closed", []int{0}, NewSet(), false},
		{"unknown level skipped", []int{42, 1}, NewSet(TagMod), true},
		{"unknown level alone denies", []int{42}, NewSet(TagAdmin), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.levels, tt.tags); got != tt.want {
				t.Errorf("Check(%v, %v) = %v, want %v", tt.levels, tt.tags, got, tt.want)
			}
		})
	}
}

func TestResolver_IsBotAdmin(t *testing.T) {
	resolver := NewResolver([]string{"1"}, []string{"2"})
	if !resolver.IsBotAdmin("1") || !resolver.IsBotAdmin("2") {
		t.Error("IsBotAdmin() = false for listed IDs")
	}
	if resolver.IsBotAdmin("3") {
		t.Error("IsBotAdmin(\"3\") = true, want false")
	}
}
