package formclient

import (
	"testing"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
)

func baseSnapshot() Snapshot {
	return snapshotFromPayload(engine.Payload{
		Form: engine.FormMeta{ID: "f1", Status: "draft"},
		Questions: []engine.RenderedQuestion{
			{Code: "a", Type: "text", Answer: "old"},
			{Code: "fleet", Type: "table", TableRows: []engine.RenderedRow{
				{RowIndex: 0, Row: map[string]interface{}{"plate": "AAA"}},
				{RowIndex: 2, Row: map[string]interface{}{"plate": "CCC"}},
			}},
		},
	})
}

func TestWithAnswerCopyOnWrite(t *testing.T) {
	before := baseSnapshot()
	after := before.withAnswer("a", "new")

	if q, _ := before.Question("a"); q.Answer != "old" {
		t.Error("original snapshot mutated")
	}
	if q, _ := after.Question("a"); q.Answer != "new" {
		t.Error("new snapshot missing the edit")
	}
}

func TestWithTableRowReplaceAndInsert(t *testing.T) {
	s := baseSnapshot()

	replaced := s.withTableRow("fleet", engine.RenderedRow{RowIndex: 0, Row: map[string]interface{}{"plate": "ZZZ"}})
	q, _ := replaced.Question("fleet")
	if len(q.TableRows) != 2 || q.TableRows[0].Row["plate"] != "ZZZ" {
		t.Errorf("replace: %+v", q.TableRows)
	}

	inserted := s.withTableRow("fleet", engine.RenderedRow{RowIndex: 1, Row: map[string]interface{}{"plate": "BBB"}})
	q, _ = inserted.Question("fleet")
	if len(q.TableRows) != 3 {
		t.Fatalf("insert: %+v", q.TableRows)
	}
	if q.TableRows[0].RowIndex != 0 || q.TableRows[1].RowIndex != 1 || q.TableRows[2].RowIndex != 2 {
		t.Errorf("rows not ordered by index: %+v", q.TableRows)
	}

	// original untouched
	q, _ = s.Question("fleet")
	if len(q.TableRows) != 2 {
		t.Error("original snapshot mutated")
	}
}

func TestSaveStateDefaultsToSaved(t *testing.T) {
	s := baseSnapshot()
	if s.SaveStateOf("a") != SAVE_STATE_SAVED {
		t.Error("untouched question must read as saved")
	}

	pending := s.withSaveState("a", SAVE_STATE_PENDING)
	if pending.SaveStateOf("a") != SAVE_STATE_PENDING {
		t.Error("state not applied")
	}
	if s.SaveStateOf("a") != SAVE_STATE_SAVED {
		t.Error("original snapshot mutated")
	}
}
