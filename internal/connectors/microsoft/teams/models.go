package teams

import (
	"slices"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

const userODataType = "#microsoft.graph.user"

// listResponse is one page of a Graph collection.
type listResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

type teamResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

func (t teamResource) toDomain() domain.Team {
	return domain.Team{ID: t.ID, DisplayName: t.DisplayName, Description: t.Description}
}

// directoryObject is a member or owner of a group. Groups can contain
// devices, service principals and nested groups as well as users.
type directoryObject struct {
	ODataType         string `json:"@odata.type"`
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	GivenName         string `json:"givenName"`
	Surname           string `json:"surname"`
}

func (o directoryObject) isUser() bool {
	return o.ODataType == "" || o.ODataType == userODataType
}

func (o directoryObject) toDomain(isOwner bool) domain.Member {
	return domain.Member{
		ID:                o.ID,
		DisplayName:       o.DisplayName,
		UserPrincipalName: o.UserPrincipalName,
		Mail:              o.Mail,
		GivenName:         o.GivenName,
		Surname:           o.Surname,
		IsOwner:           isOwner,
	}
}

type schedulingGroupResource struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	IsActive    bool     `json:"isActive"`
	UserIDs     []string `json:"userIds"`
	ETag        string   `json:"@odata.etag"`
}

func (g schedulingGroupResource) toDomain() domain.ScheduleGroup {
	return domain.ScheduleGroup{
		ID:          g.ID,
		DisplayName: g.DisplayName,
		UserIDs:     slices.Clone(g.UserIDs),
		IsActive:    g.IsActive,
		ETag:        g.ETag,
	}
}

// schedulingGroupBody is the create and replace payload. Pushed groups are
// always active.
type schedulingGroupBody struct {
	DisplayName string   `json:"displayName"`
	IsActive    bool     `json:"isActive"`
	UserIDs     []string `json:"userIds"`
}

func newSchedulingGroupBody(g *domain.ScheduleGroup) schedulingGroupBody {
	ids := g.UserIDs
	if ids == nil {
		ids = []string{}
	}
	return schedulingGroupBody{DisplayName: g.DisplayName, IsActive: true, UserIDs: ids}
}
