package quotation

import (
	"github.com/google/uuid"
	"github.com/rental/backoffice/internal/domain/shared"
)

// Submission is the body sent to the backend to create or update a quotation
type Submission struct {
	QuotationNumber    string              `json:"quotationNumber"`
	ClientName         string              `json:"clientName"`
	ClientEmail        string              `json:"clientEmail,omitempty"`
	ClientPhone        string              `json:"clientPhone,omitempty"`
	ClientAddress      string              `json:"clientAddress,omitempty"`
	ProjectName        string              `json:"projectName,omitempty"`
	ProjectDescription string              `json:"projectDescription,omitempty"`
	IssueDate          string              `json:"issueDate"`
	ValidUntil         string              `json:"validUntil,omitempty"`
	Status             Status              `json:"status"`
	Subtotal           shared.Number       `json:"subtotal"`
	Tax                shared.Number       `json:"tax"`
	Discount           shared.Number       `json:"discount"`
	Total              shared.Number       `json:"total"`
	Notes              string              `json:"notes,omitempty"`
	Terms              string              `json:"terms,omitempty"`
	Sections           []SectionSubmission `json:"sections,omitempty"`
	Items              []ItemSubmission    `json:"items,omitempty"`
}

// SectionSubmission is a section with its nested groups
type SectionSubmission struct {
	ID          int64             `json:"id,omitempty"`
	Name        string            `json:"name"`
	Date        string            `json:"date"`
	Description string            `json:"description,omitempty"`
	Subtotal    shared.Number     `json:"subtotal"`
	Groups      []GroupSubmission `json:"groups"`
}

// GroupSubmission is a group with its nested items
type GroupSubmission struct {
	ID          int64            `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Total       shared.Number    `json:"total"`
	Items       []ItemSubmission `json:"items"`
}

// ItemSubmission is a single line item
type ItemSubmission struct {
	ID          int64         `json:"id,omitempty"`
	EquipmentID *int64        `json:"equipmentId,omitempty"`
	ItemName    string        `json:"itemName"`
	Description string        `json:"description,omitempty"`
	Quantity    int           `json:"quantity"`
	Unit        string        `json:"unit"`
	PricePerDay shared.Number `json:"pricePerDay"`
	Days        int           `json:"days"`
	Total       shared.Number `json:"total"`
	Type        ItemType      `json:"type"`
	Remarks     string        `json:"remarks,omitempty"`
}

// Submission recomputes the draft and serializes it as a nested tree:
// sections with their groups and items, plus the standalone items.
// It fails without side effects when the draft is not submittable.
func (d *Draft) Submission() (Submission, error) {
	if err := d.Validate(); err != nil {
		return Submission{}, err
	}
	totals := d.Recompute()

	sub := Submission{
		QuotationNumber:    d.Header.QuotationNumber,
		ClientName:         d.Header.ClientName,
		ClientEmail:        d.Header.ClientEmail,
		ClientPhone:        d.Header.ClientPhone,
		ClientAddress:      d.Header.ClientAddress,
		ProjectName:        d.Header.ProjectName,
		ProjectDescription: d.Header.ProjectDescription,
		IssueDate:          d.Header.IssueDate,
		ValidUntil:         d.Header.ValidUntil,
		Status:             d.Header.Status,
		Subtotal:           shared.NewNumber(totals.Subtotal),
		Tax:                shared.NewNumber(d.Tax),
		Discount:           shared.NewNumber(d.Discount),
		Total:              shared.NewNumber(totals.Total),
		Notes:              d.Header.Notes,
		Terms:              d.Header.Terms,
	}

	for _, s := range d.Sections() {
		ss := SectionSubmission{
			ID:          s.ServerID,
			Name:        s.Name,
			Date:        s.Date,
			Description: s.Description,
			Subtotal:    shared.NewNumber(s.Subtotal),
			Groups:      []GroupSubmission{},
		}
		for _, g := range d.GroupsOf(s.Handle) {
			gs := GroupSubmission{
				ID:          g.ServerID,
				Name:        g.Name,
				Description: g.Description,
				Total:       shared.NewNumber(g.Total),
				Items:       []ItemSubmission{},
			}
			for _, it := range d.ItemsOf(g.Handle) {
				gs.Items = append(gs.Items, itemSubmission(it))
			}
			ss.Groups = append(ss.Groups, gs)
		}
		sub.Sections = append(sub.Sections, ss)
	}
	for _, it := range d.StandaloneItems() {
		sub.Items = append(sub.Items, itemSubmission(it))
	}
	return sub, nil
}

func itemSubmission(it Item) ItemSubmission {
	return ItemSubmission{
		ID:          it.ServerID,
		EquipmentID: it.EquipmentID,
		ItemName:    it.ItemName,
		Description: it.Description,
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		PricePerDay: shared.NewNumber(it.PricePerDay),
		Days:        it.Days,
		Total:       shared.NewNumber(it.Total),
		Type:        it.Type,
		Remarks:     it.Remarks,
	}
}

// Repair records a stored item value that was out of range when the
// quotation was loaded, and the default used in its place
type Repair struct {
	ItemID   int64
	ItemName string
	Field    string
	Stored   int
	Used     int
}

// FromQuotation loads a persisted quotation into a draft for editing.
// Items listed at the top level are attached to the group named by their
// groupId unless that group already lists them; the rest stay standalone.
// A quantity or day count below one is replaced by the item default and
// reported as a Repair.
func FromQuotation(q Quotation) (*Draft, []Repair) {
	d := &Draft{
		QuotationID: q.ID,
		Header: Header{
			QuotationNumber:    q.QuotationNumber,
			ClientName:         q.ClientName,
			ClientEmail:        q.ClientEmail,
			ClientPhone:        q.ClientPhone,
			ClientAddress:      q.ClientAddress,
			ProjectName:        q.ProjectName,
			ProjectDescription: q.ProjectDescription,
			IssueDate:          q.IssueDate,
			ValidUntil:         q.ValidUntil,
			Status:             q.Status,
			Notes:              q.Notes,
			Terms:              q.Terms,
		},
		Tax:      q.Tax,
		Discount: q.Discount,
	}
	d.ID = uuid.New()

	var repairs []Repair
	groupsByServerID := make(map[int64]Handle)
	seenItems := make(map[int64]bool)
	for _, sr := range q.Sections {
		sh := d.sections.insert(func(h Handle) Section {
			return Section{Handle: h, ServerID: sr.ID, Name: sr.Name, Date: sr.Date, Description: sr.Description}
		})
		for _, gr := range sr.Groups {
			gh := d.groups.insert(func(h Handle) Group {
				return Group{Handle: h, ServerID: gr.ID, Section: sh, Name: gr.Name, Description: gr.Description}
			})
			if gr.ID != 0 {
				groupsByServerID[gr.ID] = gh
			}
			for _, ir := range gr.Items {
				repairs = append(repairs, d.insertRecord(ir, gh)...)
				if ir.ID != 0 {
					seenItems[ir.ID] = true
				}
			}
		}
	}
	for _, ir := range q.Items {
		if ir.ID != 0 && seenItems[ir.ID] {
			continue
		}
		group := NoHandle
		if ir.GroupID != nil {
			group = groupsByServerID[*ir.GroupID]
		}
		repairs = append(repairs, d.insertRecord(ir, group)...)
	}
	d.Recompute()
	return d, repairs
}

func (d *Draft) insertRecord(ir ItemRecord, group Handle) []Repair {
	var repairs []Repair
	repair := func(field string, stored, used int) {
		repairs = append(repairs, Repair{ItemID: ir.ID, ItemName: ir.ItemName, Field: field, Stored: stored, Used: used})
	}
	d.items.insert(func(h Handle) Item {
		it := Item{
			Handle:      h,
			ServerID:    ir.ID,
			Group:       group,
			EquipmentID: ir.EquipmentID,
			Equipment:   ir.Equipment,
			ItemName:    ir.ItemName,
			Description: ir.Description,
			Quantity:    ir.Quantity,
			Unit:        ir.Unit,
			PricePerDay: ir.PricePerDay,
			Days:        ir.Days,
			Type:        ir.Type,
			Remarks:     ir.Remarks,
		}
		if it.Quantity <= 0 {
			repair("quantity", it.Quantity, DefaultItemQuantity)
			it.Quantity = DefaultItemQuantity
		}
		if it.Days <= 0 {
			repair("days", it.Days, DefaultItemDays)
			it.Days = DefaultItemDays
		}
		if it.Type == "" {
			it.Type = DefaultItemType
		}
		return it
	})
	return repairs
}

// IDMap maps local handles to server-issued identifiers, per entity kind
type IDMap struct {
	Sections map[Handle]int64 `json:"sections"`
	Groups   map[Handle]int64 `json:"groups"`
	Items    map[Handle]int64 `json:"items"`
}

// AssignServerIDs records the identifiers issued by the backend after a
// successful submit. The saved quotation is matched positionally against
// the submitted tree.
func (d *Draft) AssignServerIDs(saved Quotation) IDMap {
	ids := IDMap{
		Sections: make(map[Handle]int64),
		Groups:   make(map[Handle]int64),
		Items:    make(map[Handle]int64),
	}
	d.QuotationID = saved.ID

	sections := d.Sections()
	for i, sr := range saved.Sections {
		if i >= len(sections) {
			break
		}
		sh := sections[i].Handle
		d.setSectionID(sh, sr.ID, ids.Sections)
		groups := d.GroupsOf(sh)
		for j, gr := range sr.Groups {
			if j >= len(groups) {
				break
			}
			d.setGroupID(groups[j].Handle, gr.ID, ids.Groups)
			items := d.ItemsOf(groups[j].Handle)
			for k, ir := range gr.Items {
				if k >= len(items) {
					break
				}
				d.setItemID(items[k].Handle, ir.ID, ids.Items)
			}
		}
	}

	standalone := d.StandaloneItems()
	k := 0
	for _, ir := range saved.Items {
		if ir.GroupID != nil {
			continue
		}
		if k >= len(standalone) {
			break
		}
		d.setItemID(standalone[k].Handle, ir.ID, ids.Items)
		k++
	}
	return ids
}

func (d *Draft) setSectionID(h Handle, id int64, ids map[Handle]int64) {
	if s, ok := d.sections.get(h); ok && id != 0 {
		s.ServerID = id
		ids[h] = id
	}
}

func (d *Draft) setGroupID(h Handle, id int64, ids map[Handle]int64) {
	if g, ok := d.groups.get(h); ok && id != 0 {
		g.ServerID = id
		ids[h] = id
	}
}

func (d *Draft) setItemID(h Handle, id int64, ids map[Handle]int64) {
	if it, ok := d.items.get(h); ok && id != 0 {
		it.ServerID = id
		ids[h] = id
	}
}
