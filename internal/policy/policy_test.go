package policy_test

import (
	"testing"

	"dispatch/internal/domain/entity"
	"dispatch/internal/policy"

	"github.com/stretchr/testify/assert"
)

func id(v int64) *int64 { return &v }

var (
	reader      = &entity.User{ID: 1, Role: entity.RoleReader}
	journalistA = &entity.User{ID: 2, Role: entity.RoleJournalist}
	journalistB = &entity.User{ID: 3, Role: entity.RoleJournalist}
	editor      = &entity.User{ID: 4, Role: entity.RoleEditor}
	admin       = &entity.User{ID: 5, Role: entity.RoleReader, IsAdmin: true}
)

func TestCanViewArticle(t *testing.T) {
	draftByA := &entity.Article{AuthorID: id(journalistA.ID)}
	approvedByA := &entity.Article{AuthorID: id(journalistA.ID), Approved: true}
	publisherDraft := &entity.Article{PublisherID: id(10)}

	tests := []struct {
		name    string
		user    *entity.User
		article *entity.Article
		want    bool
	}{
		{"anonymous approved", nil, approvedByA, true},
		{"anonymous draft", nil, draftByA, false},
		{"reader draft", reader, draftByA, false},
		{"reader approved", reader, approvedByA, true},
		{"own draft", journalistA, draftByA, true},
		{"other journalist draft", journalistB, draftByA, false},
		{"journalist publisher draft", journalistA, publisherDraft, false},
		{"editor draft", editor, draftByA, true},
		{"editor publisher draft", editor, publisherDraft, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanViewArticle(tt.user, tt.article))
		})
	}
}

func TestCanDeleteArticle(t *testing.T) {
	byA := &entity.Article{AuthorID: id(journalistA.ID), Approved: true}
	byPublisher := &entity.Article{PublisherID: id(10)}

	assert.True(t, policy.CanDeleteArticle(journalistA, byA), "owner may delete")
	assert.False(t, policy.CanDeleteArticle(journalistB, byA), "journalist may not delete another journalist's article")
	assert.True(t, policy.CanDeleteArticle(editor, byA), "editor may delete any article")
	assert.True(t, policy.CanDeleteArticle(editor, byPublisher))
	assert.False(t, policy.CanDeleteArticle(journalistA, byPublisher))
	assert.False(t, policy.CanDeleteArticle(reader, byA))
	assert.False(t, policy.CanDeleteArticle(nil, byA))
}

func TestCanApprove(t *testing.T) {
	for _, u := range []*entity.User{nil, reader, journalistA, admin} {
		assert.False(t, policy.CanApprove(u))
	}
	assert.True(t, policy.CanApprove(editor))
}

func TestArticleScope(t *testing.T) {
	assert.Equal(t, policy.ScopeApproved, policy.ArticleScope(nil))
	assert.Equal(t, policy.ScopeApproved, policy.ArticleScope(reader))
	assert.Equal(t, policy.ScopeApprovedOrOwn, policy.ArticleScope(journalistA))
	assert.Equal(t, policy.ScopeAll, policy.ArticleScope(editor))
}

func TestCreateAndSubscribe(t *testing.T) {
	assert.True(t, policy.CanCreateArticle(journalistA))
	assert.True(t, policy.CanCreateArticle(editor))
	assert.False(t, policy.CanCreateArticle(reader))

	assert.True(t, policy.CanCreateNewsletter(journalistA))
	assert.False(t, policy.CanCreateNewsletter(editor))

	assert.True(t, policy.CanSubscribe(reader))
	assert.False(t, policy.CanSubscribe(journalistA))
	assert.False(t, policy.CanSubscribe(nil))

	assert.True(t, policy.CanManagePublishers(admin))
	assert.False(t, policy.CanManagePublishers(editor))
}

func TestCanModifyNewsletter(t *testing.T) {
	n := &entity.Newsletter{AuthorID: journalistA.ID}
	assert.True(t, policy.CanModifyNewsletter(journalistA, n))
	assert.False(t, policy.CanModifyNewsletter(journalistB, n))
	assert.True(t, policy.CanModifyNewsletter(editor, n))
	assert.False(t, policy.CanModifyNewsletter(reader, n))
}
