package domain_test

import (
	"testing"

	"peakform/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestAssetVisibility tests the owner/admin/public visibility rule.
func TestAssetVisibility(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	tests := []struct {
		name     string
		isPublic bool
		viewer   primitive.ObjectID
		role     domain.Role
		want     bool
	}{
		{"public visible to stranger", true, stranger, domain.RoleAthlete, true},
		{"private hidden from stranger", false, stranger, domain.RoleCoach, false},
		{"private visible to owner", false, owner, domain.RoleCoach, true},
		{"private visible to admin", false, stranger, domain.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.Asset{CreatorID: owner, IsPublic: tt.isPublic}
			if got := a.VisibleTo(tt.viewer, tt.role); got != tt.want {
				t.Errorf("VisibleTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAssetMutableBy tests only owner or admin may mutate.
func TestAssetMutableBy(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	a := domain.Asset{CreatorID: owner, IsPublic: true}

	if !a.MutableBy(owner, domain.RoleCoach) {
		t.Error("owner cannot mutate own asset")
	}
	if !a.MutableBy(stranger, domain.RoleAdmin) {
		t.Error("admin cannot mutate asset")
	}
	if a.MutableBy(stranger, domain.RoleCoach) {
		t.Error("stranger can mutate a public asset they do not own")
	}
}
