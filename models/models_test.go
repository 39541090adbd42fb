package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Laboratory{}, &Researcher{},
		&Journal{}, &JournalRanking{},
		&JournalPublication{}, &JournalAuthorship{},
		&Conference{}, &ConferenceRanking{},
		&ConferencePublication{}, &ConferenceAuthorship{},
	))
	return db
}

func TestLaboratoryNameUppercased(t *testing.T) {
	db := newTestDB(t)

	lab := Laboratory{Name: "  lcsi "}
	require.NoError(t, db.Create(&lab).Error)
	assert.Equal(t, "LCSI", lab.Name)
}

func TestJournalBeforeSaveNormalizes(t *testing.T) {
	db := newTestDB(t)

	issn := "0018-9340"
	j := Journal{Name: "IEEE Transactions on Computers.", ISSN: &issn}
	require.NoError(t, db.Create(&j).Error)

	assert.Equal(t, "ieee transactions on computers", j.NormName)
	require.NotNil(t, j.ISSN)
	assert.Equal(t, "00189340", *j.ISSN)
}

func TestJournalEmptyISSNBecomesNil(t *testing.T) {
	db := newTestDB(t)

	empty := "  "
	j := Journal{Name: "Some Journal", ISSN: &empty}
	require.NoError(t, db.Create(&j).Error)
	assert.Nil(t, j.ISSN)
}

func TestJournalNormNameUniqueIndexBackstop(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Journal{Name: "Machine Learning"}).Error)
	// A name differing only in case and punctuation collides on NormName.
	err := db.Create(&Journal{Name: "machine learning."}).Error
	assert.Error(t, err)
}

func TestConferenceBeforeSaveUppercases(t *testing.T) {
	db := newTestDB(t)

	c := Conference{Name: "International Conference on Software Engineering", Acronym: "icse"}
	require.NoError(t, db.Create(&c).Error)

	assert.Equal(t, "INTERNATIONAL CONFERENCE ON SOFTWARE ENGINEERING", c.Name)
	assert.Equal(t, "ICSE", c.Acronym)
	assert.Equal(t, "international conference on software engineering", c.NormName)
}

func TestJournalPublicationBeforeSave(t *testing.T) {
	db := newTestDB(t)

	doi := "https://doi.org/10.1000/XYZ"
	p := JournalPublication{Title: "A Study of Things.", Year: 2022, DOI: &doi}
	require.NoError(t, db.Create(&p).Error)

	assert.Equal(t, "a study of things", p.NormTitle)
	require.NotNil(t, p.DOI)
	assert.Equal(t, "10.1000/xyz", *p.DOI)
}

func TestResearcherFullName(t *testing.T) {
	r := Researcher{LastName: "Benali", FirstName: "Amel"}
	assert.Equal(t, "Amel Benali", r.FullName())
}

func TestValidGrade(t *testing.T) {
	assert.True(t, ValidGrade(GradeProfessor))
	assert.True(t, ValidGrade(GradeMaitreConferencesA))
	assert.False(t, ValidGrade("Postdoc"))
	assert.False(t, ValidGrade(""))
}

func TestValidPublicationYear(t *testing.T) {
	assert.True(t, ValidPublicationYear(1951))
	assert.True(t, ValidPublicationYear(2026))
	assert.False(t, ValidPublicationYear(1950))
	assert.False(t, ValidPublicationYear(0))
	assert.False(t, ValidPublicationYear(12345))
}

func seedAuthorship(t *testing.T, db *gorm.DB, email string) (Researcher, JournalPublication) {
	t.Helper()
	r := Researcher{LastName: "Benali", FirstName: "Amel", Email: email, Grade: GradeProfessor}
	require.NoError(t, db.Create(&r).Error)
	p := JournalPublication{Title: "A Study of Things for " + email, Year: 2022}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&JournalAuthorship{ResearcherID: r.ID, PublicationID: p.ID}).Error)
	return r, p
}

func TestAuthorshipCascadesWithResearcherDelete(t *testing.T) {
	db := newTestDB(t)
	r, p := seedAuthorship(t, db, "amel@example.org")

	require.NoError(t, db.Delete(&Researcher{}, r.ID).Error)

	var links int64
	require.NoError(t, db.Model(&JournalAuthorship{}).Count(&links).Error)
	assert.Zero(t, links)
	// The publication itself stays.
	assert.NoError(t, db.First(&JournalPublication{}, p.ID).Error)
}

func TestAuthorshipCascadesWithPublicationDelete(t *testing.T) {
	db := newTestDB(t)
	r, p := seedAuthorship(t, db, "amel2@example.org")

	require.NoError(t, db.Delete(&JournalPublication{}, p.ID).Error)

	var links int64
	require.NoError(t, db.Model(&JournalAuthorship{}).Count(&links).Error)
	assert.Zero(t, links)
	assert.NoError(t, db.First(&Researcher{}, r.ID).Error)
}

func TestConferenceAuthorshipCascades(t *testing.T) {
	db := newTestDB(t)

	r := Researcher{LastName: "Benali", FirstName: "Amel", Email: "amel3@example.org", Grade: GradeProfessor}
	require.NoError(t, db.Create(&r).Error)
	p := ConferencePublication{Title: "A Conference Paper", Year: 2021}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&ConferenceAuthorship{ResearcherID: r.ID, PublicationID: p.ID}).Error)

	require.NoError(t, db.Delete(&ConferencePublication{}, p.ID).Error)
	var links int64
	require.NoError(t, db.Model(&ConferenceAuthorship{}).Count(&links).Error)
	assert.Zero(t, links)

	p2 := ConferencePublication{Title: "Another Paper", Year: 2021}
	require.NoError(t, db.Create(&p2).Error)
	require.NoError(t, db.Create(&ConferenceAuthorship{ResearcherID: r.ID, PublicationID: p2.ID}).Error)

	require.NoError(t, db.Delete(&Researcher{}, r.ID).Error)
	require.NoError(t, db.Model(&ConferenceAuthorship{}).Count(&links).Error)
	assert.Zero(t, links)
}

func TestJournalDeleteCascadesRankingsAndNullsPublications(t *testing.T) {
	db := newTestDB(t)

	j := Journal{Name: "Machine Learning"}
	require.NoError(t, db.Create(&j).Error)
	require.NoError(t, db.Create(&JournalRanking{JournalID: j.ID, Year: 2022}).Error)
	p := JournalPublication{Title: "A Ranked Paper", Year: 2022, JournalID: &j.ID}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, db.Delete(&Journal{}, j.ID).Error)

	var rankingRows int64
	require.NoError(t, db.Model(&JournalRanking{}).Count(&rankingRows).Error)
	assert.Zero(t, rankingRows)

	var kept JournalPublication
	require.NoError(t, db.First(&kept, p.ID).Error)
	assert.Nil(t, kept.JournalID)
}

func TestRankValidators(t *testing.T) {
	assert.True(t, ValidScimagoRank(ScimagoQ1))
	assert.False(t, ValidScimagoRank("Q5"))

	assert.True(t, ValidDGRSDTRank(DGRSDTAPlus))
	assert.True(t, ValidDGRSDTRank(DGRSDTPediatrice))
	assert.False(t, ValidDGRSDTRank("F"))

	assert.True(t, ValidCoreRank(CoreAStar))
	assert.False(t, ValidCoreRank("Q1"))
}
