package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCategories(t *testing.T) {
	in := strings.NewReader("id,name,slug\n1,Movies,movies\n2,Books,books\n")

	categories, err := parseCategories(in)

	assert.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, int64(1), categories[0].ID)
	assert.Equal(t, "Movies", categories[0].Name)
	assert.Equal(t, "books", categories[1].Slug)
}

func TestParseCategories_ColumnOrderIrrelevant(t *testing.T) {
	in := strings.NewReader("slug,id,name\nmovies,1,Movies\n")

	categories, err := parseCategories(in)

	assert.NoError(t, err)
	assert.Equal(t, "movies", categories[0].Slug)
	assert.Equal(t, int64(1), categories[0].ID)
}

func TestParseCategories_MissingColumn(t *testing.T) {
	in := strings.NewReader("id,name\n1,Movies\n")

	_, err := parseCategories(in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
}

func TestParseUsers(t *testing.T) {
	in := strings.NewReader(
		"id,username,email,role,bio,first_name,last_name\n" +
			"10,critic,critic@example.com,moderator,writes a lot,Ada,Lovelace\n" +
			"11,plain,plain@example.com,,,,\n")

	users, err := parseUsers(in)

	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "moderator", users[0].Role)
	assert.Equal(t, "Ada", users[0].FirstName)
	// Empty role falls back to the default tier.
	assert.Equal(t, "user", users[1].Role)
}

func TestParseTitles_OptionalCategory(t *testing.T) {
	in := strings.NewReader("id,name,year,category\n5,Heat,1995,2\n6,Orphan,2001,\n")

	titles, err := parseTitles(in)

	assert.NoError(t, err)
	assert.Len(t, titles, 2)
	assert.Equal(t, int64(2), *titles[0].CategoryID)
	assert.Nil(t, titles[1].CategoryID)
}

func TestParseTitles_BadYear(t *testing.T) {
	in := strings.NewReader("id,name,year,category\n5,Heat,notayear,2\n")

	_, err := parseTitles(in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "year")
}

func TestParseReviews(t *testing.T) {
	in := strings.NewReader(
		"id,title_id,text,author,score,pub_date\n" +
			"1,5,A classic,10,9,2019-09-24T21:08:21.567Z\n")

	reviews, err := parseReviews(in)

	assert.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, int64(5), reviews[0].TitleID)
	assert.Equal(t, int64(10), reviews[0].AuthorID)
	assert.Equal(t, 9, reviews[0].Score)
	assert.Equal(t, 2019, reviews[0].PubDate.Year())
}

func TestParseReviews_BadTimestamp(t *testing.T) {
	in := strings.NewReader("id,title_id,text,author,score,pub_date\n1,5,x,10,9,yesterday\n")

	_, err := parseReviews(in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pub_date")
}

func TestParseComments(t *testing.T) {
	in := strings.NewReader(
		"id,review_id,text,author,pub_date\n" +
			"3,1,totally agree,11,2019-09-25T10:00:00Z\n")

	comments, err := parseComments(in)

	assert.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, int64(1), comments[0].ReviewID)
	assert.Equal(t, "totally agree", comments[0].Text)
	assert.Equal(t, time.Date(2019, 9, 25, 10, 0, 0, 0, time.UTC), comments[0].PubDate)
}

func TestParseGenreTitles(t *testing.T) {
	in := strings.NewReader("id,title_id,genre_id\n1,5,3\n2,5,4\n")

	links, err := parseGenreTitles(in)

	assert.NoError(t, err)
	assert.Len(t, links, 2)
	assert.Equal(t, int64(5), links[0].TitleID)
	assert.Equal(t, int64(4), links[1].GenreID)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := parseGenres(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_QuotedFieldsWithCommas(t *testing.T) {
	in := strings.NewReader("id,name,slug\n1,\"Science, Fiction\",sci-fi\n")

	genres, err := parseGenres(in)

	assert.NoError(t, err)
	assert.Equal(t, "Science, Fiction", genres[0].Name)
}
