package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
)

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) query() []activity.Activity {
	acts := make([]activity.Activity, 0, len(repo.db.table))
	for _, act := range repo.db.table {
		acts = append(acts, *act)
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].CreatedAt.After(acts[j].CreatedAt) })
	return acts
}

func (repo *activityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) GetActivityByID(_ context.Context, id string) (activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if act, ok := repo.db.table[id]; ok {
		return *act, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) FilterActivities(_ context.Context, filter activity.QueryFilter) ([]activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	acts := repo.db.table
	if filter.IsEmpty() {
		return repo.query(), nil
	}

	res := make([]activity.Activity, 0, len(acts))
	search := strings.ToLower(filter.Search)
	for _, act := range repo.query() {
		if filter.StudentID != "" && act.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && act.Status != filter.Status {
			continue
		}
		if !filter.CreatedFrom.IsZero() && act.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && act.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(act.Title), search) &&
			!strings.Contains(strings.ToLower(act.ActivityType), search) &&
			!strings.Contains(strings.ToLower(act.Organizer), search) {
			continue
		}
		res = append(res, act)
	}
	return res, nil
}

func (repo *activityRepository) UpdateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[act.ID]; !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	repo.db.table[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) DeleteActivitiesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
