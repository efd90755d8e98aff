package recovery

import (
	"github.com/google/uuid"

	"github.com/storytrace/storytrace/internal/model"
)

// wireDocument mirrors the export's JSON shape with loose typing where
// tool versions disagree (ids and times appear as strings or numbers).
type wireDocument struct {
	Error      string       `json:"error"`
	MainUser   *wireAccount `json:"mainUser"`
	DeviceID   interface{}  `json:"deviceId"`
	DeviceName string       `json:"deviceName"`
	Items      []*wireNode  `json:"items"`
}

type wireAccount struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type wireNode struct {
	ID                interface{}     `json:"id"`
	Title             wireTitle       `json:"title"`
	ActionType        string          `json:"actionType"`
	Time              interface{}     `json:"time"`
	Entity            *model.Entity   `json:"entity"`
	Details           []wireDetail    `json:"details"`
	AdditionalDetails []wireSection   `json:"additionalDetails"`
	Children          []*wireNode     `json:"children"`
	NestedItems       []*wireNode     `json:"nestedItems"`
	AssociatedAlerts  []interface{}   `json:"associatedAlerts"`
}

type wireTitle struct {
	Prefix string `json:"prefix"`
	Main   string `json:"main"`
	Intro  string `json:"intro"`
}

type wireDetail struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	ValueType string      `json:"valueType"`
}

type wireSection struct {
	Title   string       `json:"title"`
	Details []wireDetail `json:"details"`
}

func (w *wireDocument) toModel() *model.Document {
	doc := &model.Document{
		Error:      w.Error,
		DeviceID:   model.ToString(w.DeviceID),
		DeviceName: w.DeviceName,
		Items:      toModelNodes(w.Items),
	}
	if w.MainUser != nil {
		doc.MainUser = &model.Account{Name: w.MainUser.Name, Domain: w.MainUser.Domain}
	}
	return doc
}

func toModelNodes(nodes []*wireNode) []*model.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, n.toModel())
	}
	return out
}

func (w *wireNode) toModel() *model.Node {
	n := &model.Node{
		ID:         model.ToString(w.ID),
		Title:      model.Title{Prefix: w.Title.Prefix, Main: w.Title.Main, Intro: w.Title.Intro},
		ActionType: w.ActionType,
		Time:       model.ToString(w.Time),
		Entity:     w.Entity,
	}
	// Node identifiers must be stable for the lifetime of one load;
	// exports without ids get one assigned here.
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Details = toModelDetails(w.Details)
	for _, s := range w.AdditionalDetails {
		n.AdditionalDetails = append(n.AdditionalDetails, model.AdditionalDetailSection{
			Title:   s.Title,
			Details: toModelDetails(s.Details),
		})
	}
	n.Children = toModelNodes(w.Children)
	n.NestedItems = toModelNodes(w.NestedItems)
	for _, a := range w.AssociatedAlerts {
		if s := model.ToString(a); s != "" {
			n.AssociatedAlerts = append(n.AssociatedAlerts, s)
		}
	}
	return n
}

func toModelDetails(details []wireDetail) []model.Detail {
	if len(details) == 0 {
		return nil
	}
	out := make([]model.Detail, 0, len(details))
	for _, d := range details {
		out = append(out, model.Detail{
			Key:       d.Key,
			Value:     model.ToString(d.Value),
			ValueType: d.ValueType,
		})
	}
	return out
}
