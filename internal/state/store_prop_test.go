package state

import (
	"encoding/json"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/equipctl/equipctl/internal/model"
)

// Drives random but well-ordered action sequences against the store and
// checks the structural invariants after every step.
func TestStoreInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()

		recordsGen := rapid.Custom(func(t *rapid.T) []model.Equipment {
			n := rapid.IntRange(0, 5).Draw(t, "n")
			records := make([]model.Equipment, 0, n)
			for i := 0; i < n; i++ {
				records = append(records, model.Equipment{
					ID:     json.Number(fmt.Sprintf("%d", i+1)),
					Name:   rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(t, "name"),
					Status: rapid.SampledFrom(model.Statuses()).Draw(t, "status"),
				})
			}
			return records
		})

		t.Repeat(map[string]func(*rapid.T){
			"list": func(t *rapid.T) {
				if s.List.Phase == InFlight {
					t.Skip()
				}
				s.BeginList()
				if rapid.Bool().Draw(t, "listOK") {
					s.ListSucceeded(recordsGen.Draw(t, "records"))
				} else {
					s.ListFailed("fetch failed")
					if len(s.Records) != 0 {
						t.Fatalf("records not emptied after failed list: %+v", s.Records)
					}
				}
			},
			"create": func(t *rapid.T) {
				if s.Create.Phase == InFlight {
					t.Skip()
				}
				if rapid.Bool().Draw(t, "validDraft") {
					s.Draft = model.Draft{Name: "n", Type: "t", Location: "l", Status: model.StatusActive}
				} else {
					s.Draft = model.Draft{Name: rapid.SampledFrom([]string{"", "n"}).Draw(t, "name")}
				}
				before := s.Draft
				if err := s.BeginCreate(); err != nil {
					if s.Create.Phase == InFlight {
						t.Fatal("create in flight after validation failure")
					}
					return
				}
				if rapid.Bool().Draw(t, "createOK") {
					s.CreateSucceeded("ok")
					if s.Draft != (model.Draft{}) {
						t.Fatalf("draft not reset after successful create: %+v", s.Draft)
					}
				} else {
					s.CreateFailed("fail")
					if s.Draft != before {
						t.Fatalf("draft changed on failed create: %+v", s.Draft)
					}
				}
			},
			"remove": func(t *rapid.T) {
				if len(s.Records) == 0 {
					t.Skip()
				}
				target := rapid.SampledFrom(s.Records).Draw(t, "target")
				if err := s.BeginRemove(target.ID.String()); err != nil {
					t.Fatalf("BeginRemove with no delete outstanding: %v", err)
				}
				if err := s.BeginRemove(target.ID.String()); err == nil {
					t.Fatal("second BeginRemove not rejected")
				}
				before := len(s.Records)
				if rapid.Bool().Draw(t, "removeOK") {
					s.RemoveSucceeded("ok")
					for _, rec := range s.Records {
						if rec.ID == target.ID {
							t.Fatalf("record %s still present after optimistic removal", rec.ID)
						}
					}
				} else {
					s.RemoveFailed("fail")
					if len(s.Records) != before {
						t.Fatal("records changed on failed remove")
					}
				}
			},
			"": func(t *rapid.T) {
				if s.Records == nil {
					t.Fatal("records is nil")
				}
				if s.DeletingID != "" && s.Remove.Phase != InFlight {
					t.Fatalf("deleting id %q set while remove phase is %v", s.DeletingID, s.Remove.Phase)
				}
				busy := s.List.Phase == InFlight || s.Create.Phase == InFlight || s.Remove.Phase == InFlight
				if s.Busy() != busy {
					t.Fatal("Busy() disagrees with action phases")
				}
			},
		})
	})
}
