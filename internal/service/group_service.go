package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage"
)

// GroupService manages group lifecycle and membership. The expense
// service reads group membership as its authorization gate; it never
// mutates it.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage
// backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group. The creator is always a member, listed
// or not. Every member ID must reference an existing user.
func (s *GroupService) CreateGroup(ctx context.Context, actorID, name string, memberIDs []string) (*models.Group, error) {
	members := memberIDs
	hasCreator := false
	for _, id := range members {
		if id == actorID {
			hasCreator = true
			break
		}
	}
	if !hasCreator {
		members = append([]string{actorID}, members...)
	}

	if err := s.requireUsersExist(ctx, members); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		Members:   members,
		CreatedBy: actorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group; the acting user must be a member.
func (s *GroupService) GetGroup(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}
	return group, nil
}

// ListGroups retrieves all groups the acting user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, actorID string) ([]*models.Group, error) {
	groups, err := s.store.ListGroupsByMember(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup renames a group and/or replaces its member list. The
// acting user must be a member. A nil member list keeps the current
// members.
func (s *GroupService) UpdateGroup(ctx context.Context, actorID, groupID string, name *string, memberIDs []string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}

	if name != nil {
		group.Name = *name
	}
	if memberIDs != nil {
		if err := s.requireUsersExist(ctx, memberIDs); err != nil {
			return nil, err
		}
		group.Members = memberIDs
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, groupErr(err)
	}

	updated, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, groupErr(err)
	}
	slog.Info("Group updated", "group_id", groupID, "members", len(updated.Members))
	return updated, nil
}

// DeleteGroup removes a group and everything in it. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return groupErr(err)
	}
	if group.CreatedBy != actorID {
		return ErrNotGroupCreator
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return groupErr(err)
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

func (s *GroupService) requireUsersExist(ctx context.Context, ids []string) error {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("look up members: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return fmt.Errorf("user %s: %w", id, ErrUserNotFound)
		}
	}
	return nil
}
