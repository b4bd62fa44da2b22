package apigateway

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
)

// fakeRepo is an in-memory API Gateway. Listing order is insertion order and
// the continuation cursor is the offset of the next page.
type fakeRepo struct {
	mu     sync.Mutex
	apis   []apigateway.RemoteAPI
	stages map[string][]string
	nextID int

	listCalls     int
	listErr       error
	listStagesErr error
	deleteAPIErr  error
	deleteStgErr  error
	deletedAPIs   []string
	deletedStages []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stages: map[string][]string{}}
}

func (f *fakeRepo) addAPI(name string, stages ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("api-%04d", f.nextID)
	f.apis = append(f.apis, apigateway.RemoteAPI{ID: id, Name: name})
	f.stages[id] = append([]string(nil), stages...)
	return id
}

func (f *fakeRepo) seed(n int, prefix string) {
	for i := 0; i < n; i++ {
		f.addAPI(fmt.Sprintf("%s-%d", prefix, i))
	}
}

func (f *fakeRepo) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOf(id) >= 0
}

func (f *fakeRepo) indexOf(id string) int {
	for i, api := range f.apis {
		if api.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeRepo) ListAPIs(_ context.Context, position string, limit int32) (*apigateway.APIPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	start := 0
	if position != "" {
		var err error
		if start, err = strconv.Atoi(position); err != nil {
			return nil, apigateway.NewRemoteServiceError("GetRestApis", "", err)
		}
	}
	if start > len(f.apis) {
		start = len(f.apis)
	}
	end := start + int(limit)
	if end > len(f.apis) {
		end = len(f.apis)
	}

	page := &apigateway.APIPage{Items: append([]apigateway.RemoteAPI(nil), f.apis[start:end]...)}
	if end-start == int(limit) {
		page.Position = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeRepo) ListStages(_ context.Context, apiID string) ([]apigateway.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listStagesErr != nil {
		return nil, f.listStagesErr
	}
	if f.indexOf(apiID) < 0 {
		return nil, apigateway.NewNotFoundError("GetStages", apiID, apigateway.ErrAPINotFound)
	}

	var stages []apigateway.Stage
	for _, name := range f.stages[apiID] {
		stages = append(stages, apigateway.Stage{Name: name, ParentAPIID: apiID})
	}
	return stages, nil
}

func (f *fakeRepo) DeleteStage(_ context.Context, apiID, stageName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteStgErr != nil {
		return f.deleteStgErr
	}
	if f.indexOf(apiID) < 0 {
		return apigateway.NewNotFoundError("DeleteStage", apiID, apigateway.ErrAPINotFound)
	}

	stages := f.stages[apiID]
	for i, name := range stages {
		if name == stageName {
			f.stages[apiID] = append(stages[:i:i], stages[i+1:]...)
			f.deletedStages = append(f.deletedStages, apiID+"/"+stageName)
			return nil
		}
	}
	return apigateway.NewNotFoundError("DeleteStage", apiID+"/"+stageName, apigateway.ErrStageMissing)
}

func (f *fakeRepo) DeleteAPI(_ context.Context, apiID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteAPIErr != nil {
		return f.deleteAPIErr
	}
	i := f.indexOf(apiID)
	if i < 0 {
		return apigateway.NewNotFoundError("DeleteRestApi", apiID, apigateway.ErrAPINotFound)
	}

	f.apis = append(f.apis[:i:i], f.apis[i+1:]...)
	delete(f.stages, apiID)
	f.deletedAPIs = append(f.deletedAPIs, apiID)
	return nil
}

func (f *fakeRepo) ensureStage(apiID, stage string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.stages[apiID] {
		if s == stage {
			return
		}
	}
	f.stages[apiID] = append(f.stages[apiID], stage)
}

// fakeFetcher serves titles by object key and entity tags by location.
type fakeFetcher struct {
	mu       sync.Mutex
	titles   map[string]string
	etags    map[lifecycle.StorageLocation]string
	headErrs map[lifecycle.StorageLocation]error
	fetchErr error

	fetches int
	heads   int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		titles:   map[string]string{},
		etags:    map[lifecycle.StorageLocation]string{},
		headErrs: map[lifecycle.StorageLocation]error{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, loc lifecycle.StorageLocation, _ map[string]string) (*lifecycle.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	title, ok := f.titles[loc.Key]
	if !ok {
		return nil, apigateway.NewValidationError("resolve title", lifecycle.ErrTitleRequired)
	}
	return &lifecycle.Artifact{Path: "/nonexistent/" + loc.Key, Title: title}, nil
}

func (f *fakeFetcher) ContentIdentity(_ context.Context, loc lifecycle.StorageLocation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.heads++
	if err := f.headErrs[loc]; err != nil {
		return "", err
	}
	tag, ok := f.etags[loc]
	if !ok {
		return "", apigateway.NewNotFoundError("HeadObject", loc.String(), nil)
	}
	return tag, nil
}

// fakeImporter applies definitions to the fake repository.
type fakeImporter struct {
	repo    *fakeRepo
	err     error
	created int
	updated int
}

func (f *fakeImporter) Create(_ context.Context, artifact *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created++

	var stages []string
	if stage != "" {
		stages = append(stages, stage)
	}
	id := f.repo.addAPI(artifact.Title, stages...)
	return &apigateway.RemoteAPI{ID: id, Name: artifact.Title}, nil
}

func (f *fakeImporter) Update(_ context.Context, existing *apigateway.RemoteAPI, _ *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated++

	if stage != "" {
		f.repo.ensureStage(existing.ID, stage)
	}
	return existing.Clone(), nil
}

type recordingSink struct {
	reports []*lifecycle.Report
	err     error
}

func (s *recordingSink) Send(_ context.Context, report *lifecycle.Report) error {
	s.reports = append(s.reports, report)
	return s.err
}
