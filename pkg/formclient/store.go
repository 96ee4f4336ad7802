package formclient

import (
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
)

// Snapshot is one immutable view of the form state. Mutations return a
// new snapshot and never touch the one handed out, so a caller can keep
// rendering from a snapshot while the coordinator moves on.
type Snapshot struct {
	Form       engine.FormMeta
	Questions  []engine.RenderedQuestion
	SaveStates map[string]SaveState
}

func snapshotFromPayload(p engine.Payload) Snapshot {
	return Snapshot{
		Form:       p.Form,
		Questions:  p.Questions,
		SaveStates: map[string]SaveState{},
	}
}

func (s Snapshot) Question(code string) (engine.RenderedQuestion, bool) {
	for _, q := range s.Questions {
		if q.Code == code {
			return q, true
		}
	}
	return engine.RenderedQuestion{}, false
}

func (s Snapshot) SaveStateOf(code string) SaveState {
	if state, ok := s.SaveStates[code]; ok {
		return state
	}
	return SAVE_STATE_SAVED
}

// withAnswer returns a snapshot where one question carries a new local
// answer value.
func (s Snapshot) withAnswer(code string, value interface{}) Snapshot {
	next := s.clone()
	for i := range next.Questions {
		if next.Questions[i].Code == code {
			next.Questions[i].Answer = value
			break
		}
	}
	return next
}

// withTableRow returns a snapshot where one row of a table question is
// replaced (or appended, ordered by row index).
func (s Snapshot) withTableRow(code string, row engine.RenderedRow) Snapshot {
	next := s.clone()
	for i := range next.Questions {
		if next.Questions[i].Code != code {
			continue
		}
		rows := make([]engine.RenderedRow, len(next.Questions[i].TableRows))
		copy(rows, next.Questions[i].TableRows)

		replaced := false
		for j := range rows {
			if rows[j].RowIndex == row.RowIndex {
				rows[j] = row
				replaced = true
				break
			}
		}
		if !replaced {
			insertAt := len(rows)
			for j := range rows {
				if rows[j].RowIndex > row.RowIndex {
					insertAt = j
					break
				}
			}
			rows = append(rows[:insertAt], append([]engine.RenderedRow{row}, rows[insertAt:]...)...)
		}
		next.Questions[i].TableRows = rows
		break
	}
	return next
}

func (s Snapshot) withSaveState(code string, state SaveState) Snapshot {
	next := s.clone()
	next.SaveStates[code] = state
	return next
}

func (s Snapshot) clone() Snapshot {
	questions := make([]engine.RenderedQuestion, len(s.Questions))
	copy(questions, s.Questions)
	states := make(map[string]SaveState, len(s.SaveStates))
	for k, v := range s.SaveStates {
		states[k] = v
	}
	return Snapshot{
		Form:       s.Form,
		Questions:  questions,
		SaveStates: states,
	}
}
