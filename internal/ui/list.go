package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/curator/internal/models"
)

var (
	_ list.Item = editItem{}
	_ list.Item = membershipItem{}
)

// editItem wraps [models.Edit] to implement [list.Item].
type editItem struct {
	edit *models.Edit
}

func (i editItem) FilterValue() string { return i.edit.Name() }
func (i editItem) Title() string       { return i.edit.Name() }
func (i editItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.edit.Status(), i.edit.Source())
	if i.edit.HasTerm() {
		desc = fmt.Sprintf("%s • term %d", desc, *i.edit.TermID())
	}
	return desc
}

// membershipItem wraps [models.Membership] to implement [list.Item].
type membershipItem struct {
	membership *models.Membership
}

func (i membershipItem) FilterValue() string { return fmt.Sprint(i.membership.ProductID()) }
func (i membershipItem) Title() string {
	return fmt.Sprintf("%s product %d", styles.badge(i.membership.Status()), i.membership.ProductID())
}
func (i membershipItem) Description() string {
	return fmt.Sprintf("score %d • %s", i.membership.Score(), strings.Join(i.membership.Reasons(), ", "))
}
