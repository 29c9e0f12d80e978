package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validInput(slug string) PostInput {
	return PostInput{
		Title:   strPtr("Visto EB-2 NIW"),
		Slug:    strPtr(slug),
		Summary: strPtr("Resumo"),
		Body:    strPtr("Conteúdo"),
	}
}

func TestCreatePostRequiresFields(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.CreatePost(context.Background(), PostInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePostDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	p, err := svc.CreatePost(context.Background(), validInput("visto-eb2"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Zero(t, p.ViewCount)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.CreatePost(context.Background(), validInput("dup"))
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), validInput("dup"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreatePostWithTags(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	green, err := svc.CreateTag(ctx, "Green Card", "")
	require.NoError(t, err)
	f1, err := svc.CreateTag(ctx, "Estudante", "")
	require.NoError(t, err)

	in := validInput("com-tags")
	in.TagIDs = &[]string{green.ID, f1.ID}
	p, err := svc.CreatePost(ctx, in)
	require.NoError(t, err)
	require.Len(t, p.Tags, 2)
	assert.Equal(t, "Estudante", p.Tags[0].Name)

	in = validInput("tag-inexistente")
	in.TagIDs = &[]string{"missing"}
	_, err = svc.CreatePost(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePostPartial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	p, err := svc.CreatePost(ctx, validInput("original"))
	require.NoError(t, err)
	_, err = svc.RecordView(ctx, p.ID)
	require.NoError(t, err)

	published := true
	updated, err := svc.UpdatePost(ctx, p.ID, PostInput{Published: &published, Title: strPtr("Novo título")})
	require.NoError(t, err)
	assert.True(t, updated.Published)
	assert.Equal(t, "Novo título", updated.Title)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, int64(1), updated.ViewCount)

	_, err = svc.UpdatePost(ctx, "missing", PostInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoriesAndTagsSortedAndEmpty(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)

	for _, name := range []string{"Vistos", "Educação", "Carreira"} {
		_, err := svc.CreateCategory(ctx, name, "", "")
		require.NoError(t, err)
	}
	cats, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"Carreira", "Educação", "Vistos"}, []string{cats[0].Name, cats[1].Name, cats[2].Name})
	assert.Equal(t, "educacao", cats[1].Slug)
}

func TestListPostsFilters(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	published := true
	for i, slug := range []string{"a", "b", "c"} {
		in := validInput(slug)
		if i != 1 {
			in.Published = &published
		}
		_, err := svc.CreatePost(ctx, in)
		require.NoError(t, err)
	}
	posts, err := svc.ListPosts(ctx, ListFilter{Published: &published})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, err = svc.ListPosts(ctx, ListFilter{Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListMissingImages(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	cat, err := svc.CreateCategory(ctx, "Imigração", "", "")
	require.NoError(t, err)
	in := validInput("sem-imagem")
	in.CategoryID = &cat.ID
	p, err := svc.CreatePost(ctx, in)
	require.NoError(t, err)

	articles, err := svc.ListMissingImages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Imigração", articles[0].Category)

	require.NoError(t, svc.SetImage(ctx, p.ID, "https://img/x.jpg"))
	articles, err = svc.ListMissingImages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Visto de Estudante F-1":  "visto-de-estudante-f-1",
		"  Imigração & Educação ": "imigracao-educacao",
		"---":                     "",
		"já-existe":               "ja-existe",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
