package parser

import (
	"github.com/cyp0633/icsitems/item"
)

// resolve attaches every exception to the master sharing its UID, in
// discovery order. Exceptions without a master get a synthesized one whose
// recurrence set holds exactly the recurrence ids seen for that UID.
func (p *Parser) resolve(st *state) {
	faked := make(map[string]bool)

	for _, exc := range st.excItems {
		rid, ok := exc.RecurrenceID().Get()
		if !ok {
			continue
		}
		uid := exc.ID()

		parent, found := st.uid2parent[uid]
		if !found {
			parent = p.fakeMaster(exc, rid)
			faked[uid] = true
			st.uid2parent[uid] = parent
			st.items = append(st.items, parent)
			p.logger.Debug("synthesized master for parentless exception",
				"uid", uid,
				"recurrence_id", rid.String())
		}

		if faked[uid] {
			parent.RecurrenceInfo().AppendRecurrenceItem(item.RecurrenceDate{Date: rid})
			st.parentlessItems = append(st.parentlessItems, exc)
		}

		if err := parent.RecurrenceInfo().ModifyException(exc, true); err != nil {
			p.logger.Error("failed to attach exception",
				"uid", uid,
				"recurrence_id", rid.String(),
				"error", err)
		}
	}
}

// fakeMaster builds a master of the same kind as exc starting at rid
func (p *Parser) fakeMaster(exc item.Item, rid item.DateTime) item.Item {
	parent := item.Create(p.factory, exc.Kind())
	parent.SetID(exc.ID())
	parent.SetStartDate(rid)
	parent.SetFakedMaster(true)
	parent.SetRecurrenceInfo(item.NewRecurrenceInfo())
	return parent
}
