// Package mocks provides testify mocks for the vcs interfaces.
package mocks

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/panbanda/churnscope/internal/vcs"
	"github.com/stretchr/testify/mock"
)

// TestingT is the subset of *testing.T the mock constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t TestingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockOpener is a mock vcs.Opener.
type MockOpener struct {
	mock.Mock
}

var _ vcs.Opener = (*MockOpener)(nil)

// NewMockOpener creates a MockOpener that asserts its expectations on cleanup.
func NewMockOpener(t TestingT) *MockOpener {
	m := &MockOpener{}
	register(&m.Mock, t)
	return m
}

// MockOpener_Expecter records typed expectations.
type MockOpener_Expecter struct {
	mock *mock.Mock
}

func (_m *MockOpener) EXPECT() *MockOpener_Expecter {
	return &MockOpener_Expecter{mock: &_m.Mock}
}

func (_m *MockOpener) PlainOpen(path string) (vcs.Repository, error) {
	return _m.open("PlainOpen", path)
}

func (_m *MockOpener) PlainOpenWithDetect(path string) (vcs.Repository, error) {
	return _m.open("PlainOpenWithDetect", path)
}

func (_m *MockOpener) open(method, path string) (vcs.Repository, error) {
	ret := _m.MethodCalled(method, path)
	if rf, ok := ret.Get(0).(func(string) (vcs.Repository, error)); ok {
		return rf(path)
	}
	var r0 vcs.Repository
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(vcs.Repository)
	}
	return r0, ret.Error(1)
}

// MockOpener_Open_Call wraps an expectation on PlainOpen or PlainOpenWithDetect.
type MockOpener_Open_Call struct {
	*mock.Call
}

func (_e *MockOpener_Expecter) PlainOpen(path interface{}) *MockOpener_Open_Call {
	return &MockOpener_Open_Call{Call: _e.mock.On("PlainOpen", path)}
}

func (_e *MockOpener_Expecter) PlainOpenWithDetect(path interface{}) *MockOpener_Open_Call {
	return &MockOpener_Open_Call{Call: _e.mock.On("PlainOpenWithDetect", path)}
}

func (_c *MockOpener_Open_Call) Return(repo vcs.Repository, err error) *MockOpener_Open_Call {
	_c.Call.Return(repo, err)
	return _c
}

func (_c *MockOpener_Open_Call) RunAndReturn(run func(string) (vcs.Repository, error)) *MockOpener_Open_Call {
	_c.Call.Return(run, nil)
	return _c
}

// MockRepository is a mock vcs.Repository.
type MockRepository struct {
	mock.Mock
}

var _ vcs.Repository = (*MockRepository)(nil)

// NewMockRepository creates a MockRepository that asserts its expectations on cleanup.
func NewMockRepository(t TestingT) *MockRepository {
	m := &MockRepository{}
	register(&m.Mock, t)
	return m
}

// MockRepository_Expecter records typed expectations.
type MockRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRepository) EXPECT() *MockRepository_Expecter {
	return &MockRepository_Expecter{mock: &_m.Mock}
}

func (_m *MockRepository) Head() (vcs.Reference, error) {
	ret := _m.Called()
	var r0 vcs.Reference
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(vcs.Reference)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Log(opts *vcs.LogOptions) (vcs.CommitIterator, error) {
	ret := _m.Called(opts)
	var r0 vcs.CommitIterator
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(vcs.CommitIterator)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) RepoPath() string {
	return _m.Called().String(0)
}

// MockRepository_Head_Call wraps an expectation on Head.
type MockRepository_Head_Call struct {
	*mock.Call
}

func (_e *MockRepository_Expecter) Head() *MockRepository_Head_Call {
	return &MockRepository_Head_Call{Call: _e.mock.On("Head")}
}

func (_c *MockRepository_Head_Call) Return(ref vcs.Reference, err error) *MockRepository_Head_Call {
	_c.Call.Return(ref, err)
	return _c
}

// MockRepository_Log_Call wraps an expectation on Log.
type MockRepository_Log_Call struct {
	*mock.Call
}

func (_e *MockRepository_Expecter) Log(opts interface{}) *MockRepository_Log_Call {
	return &MockRepository_Log_Call{Call: _e.mock.On("Log", opts)}
}

func (_c *MockRepository_Log_Call) Return(iter vcs.CommitIterator, err error) *MockRepository_Log_Call {
	_c.Call.Return(iter, err)
	return _c
}

// MockRepository_RepoPath_Call wraps an expectation on RepoPath.
type MockRepository_RepoPath_Call struct {
	*mock.Call
}

func (_e *MockRepository_Expecter) RepoPath() *MockRepository_RepoPath_Call {
	return &MockRepository_RepoPath_Call{Call: _e.mock.On("RepoPath")}
}

func (_c *MockRepository_RepoPath_Call) Return(path string) *MockRepository_RepoPath_Call {
	_c.Call.Return(path)
	return _c
}

// MockReference is a mock vcs.Reference.
type MockReference struct {
	mock.Mock
}

var _ vcs.Reference = (*MockReference)(nil)

// NewMockReference creates a MockReference that asserts its expectations on cleanup.
func NewMockReference(t TestingT) *MockReference {
	m := &MockReference{}
	register(&m.Mock, t)
	return m
}

func (_m *MockReference) Hash() plumbing.Hash {
	return _m.Called().Get(0).(plumbing.Hash)
}

// MockCommitIterator is a mock vcs.CommitIterator.
type MockCommitIterator struct {
	mock.Mock
}

var _ vcs.CommitIterator = (*MockCommitIterator)(nil)

// NewMockCommitIterator creates a MockCommitIterator that asserts its expectations on cleanup.
func NewMockCommitIterator(t TestingT) *MockCommitIterator {
	m := &MockCommitIterator{}
	register(&m.Mock, t)
	return m
}

// MockCommitIterator_Expecter records typed expectations.
type MockCommitIterator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockCommitIterator) EXPECT() *MockCommitIterator_Expecter {
	return &MockCommitIterator_Expecter{mock: &_m.Mock}
}

func (_m *MockCommitIterator) ForEach(fn func(vcs.Commit) error) error {
	ret := _m.Called(fn)
	if rf, ok := ret.Get(0).(func(func(vcs.Commit) error) error); ok {
		return rf(fn)
	}
	return ret.Error(0)
}

func (_m *MockCommitIterator) Close() {
	_m.Called()
}

// MockCommitIterator_ForEach_Call wraps an expectation on ForEach.
type MockCommitIterator_ForEach_Call struct {
	*mock.Call
}

func (_e *MockCommitIterator_Expecter) ForEach(fn interface{}) *MockCommitIterator_ForEach_Call {
	return &MockCommitIterator_ForEach_Call{Call: _e.mock.On("ForEach", fn)}
}

func (_c *MockCommitIterator_ForEach_Call) Return(err error) *MockCommitIterator_ForEach_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockCommitIterator_ForEach_Call) RunAndReturn(run func(func(vcs.Commit) error) error) *MockCommitIterator_ForEach_Call {
	_c.Call.Return(run)
	return _c
}

// MockCommitIterator_Close_Call wraps an expectation on Close.
type MockCommitIterator_Close_Call struct {
	*mock.Call
}

func (_e *MockCommitIterator_Expecter) Close() *MockCommitIterator_Close_Call {
	return &MockCommitIterator_Close_Call{Call: _e.mock.On("Close")}
}

func (_c *MockCommitIterator_Close_Call) Return() *MockCommitIterator_Close_Call {
	_c.Call.Return()
	return _c
}

// MockCommit is a mock vcs.Commit.
type MockCommit struct {
	mock.Mock
}

var _ vcs.Commit = (*MockCommit)(nil)

// NewMockCommit creates a MockCommit that asserts its expectations on cleanup.
func NewMockCommit(t TestingT) *MockCommit {
	m := &MockCommit{}
	register(&m.Mock, t)
	return m
}

// MockCommit_Expecter records typed expectations.
type MockCommit_Expecter struct {
	mock *mock.Mock
}

func (_m *MockCommit) EXPECT() *MockCommit_Expecter {
	return &MockCommit_Expecter{mock: &_m.Mock}
}

func (_m *MockCommit) Hash() plumbing.Hash {
	return _m.Called().Get(0).(plumbing.Hash)
}

func (_m *MockCommit) NumParents() int {
	return _m.Called().Int(0)
}

func (_m *MockCommit) Stats() (object.FileStats, error) {
	ret := _m.Called()
	var r0 object.FileStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(object.FileStats)
	}
	return r0, ret.Error(1)
}

func (_m *MockCommit) Author() object.Signature {
	return _m.Called().Get(0).(object.Signature)
}

// MockCommit_Hash_Call wraps an expectation on Hash.
type MockCommit_Hash_Call struct {
	*mock.Call
}

func (_e *MockCommit_Expecter) Hash() *MockCommit_Hash_Call {
	return &MockCommit_Hash_Call{Call: _e.mock.On("Hash")}
}

func (_c *MockCommit_Hash_Call) Return(h plumbing.Hash) *MockCommit_Hash_Call {
	_c.Call.Return(h)
	return _c
}

// MockCommit_NumParents_Call wraps an expectation on NumParents.
type MockCommit_NumParents_Call struct {
	*mock.Call
}

func (_e *MockCommit_Expecter) NumParents() *MockCommit_NumParents_Call {
	return &MockCommit_NumParents_Call{Call: _e.mock.On("NumParents")}
}

func (_c *MockCommit_NumParents_Call) Return(n int) *MockCommit_NumParents_Call {
	_c.Call.Return(n)
	return _c
}

// MockCommit_Stats_Call wraps an expectation on Stats.
type MockCommit_Stats_Call struct {
	*mock.Call
}

func (_e *MockCommit_Expecter) Stats() *MockCommit_Stats_Call {
	return &MockCommit_Stats_Call{Call: _e.mock.On("Stats")}
}

func (_c *MockCommit_Stats_Call) Return(stats object.FileStats, err error) *MockCommit_Stats_Call {
	_c.Call.Return(stats, err)
	return _c
}

// MockCommit_Author_Call wraps an expectation on Author.
type MockCommit_Author_Call struct {
	*mock.Call
}

func (_e *MockCommit_Expecter) Author() *MockCommit_Author_Call {
	return &MockCommit_Author_Call{Call: _e.mock.On("Author")}
}

func (_c *MockCommit_Author_Call) Return(sig object.Signature) *MockCommit_Author_Call {
	_c.Call.Return(sig)
	return _c
}
