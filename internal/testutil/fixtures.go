package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// DefaultPassword is the plain-text password of fixture users.
const DefaultPassword = "password123"

var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateUser creates an active user with the given role and DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username:     fmt.Sprintf("%s%d", role, n),
		Email:        fmt.Sprintf("%s%d@rci.test", role, n),
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", n),
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateProgram creates a program with a unique code.
func CreateProgram(t *testing.T, db *gorm.DB) *models.Program {
	t.Helper()

	n := nextID()
	program := &models.Program{
		Code:       fmt.Sprintf("BS%d", n),
		Name:       fmt.Sprintf("Bachelor of Science %d", n),
		Department: "ICTD",
		Sector:     "IT",
	}
	if err := db.Create(program).Error; err != nil {
		t.Fatalf("failed to create program: %v", err)
	}
	return program
}

// CreateCurriculum creates a first-year, first-semester curriculum for program.
func CreateCurriculum(t *testing.T, db *gorm.DB, program *models.Program) *models.Curriculum {
	t.Helper()

	curriculum := &models.Curriculum{ProgramID: program.ID, YearLevel: int(nextID()%4) + 1, Semester: models.SemesterFirst}
	if err := db.Create(curriculum).Error; err != nil {
		t.Fatalf("failed to create curriculum: %v", err)
	}
	return curriculum
}

// CreateSubject creates a subject with the given code and prerequisite subject ids.
func CreateSubject(t *testing.T, db *gorm.DB, curriculum *models.Curriculum, code string, prerequisites ...string) *models.Subject {
	t.Helper()

	subject := &models.Subject{
		Code:          code,
		Title:         "Subject " + code,
		Units:         3,
		Prerequisites: datatypes.JSONSlice[string](prerequisites),
		CurriculumID:  curriculum.ID,
	}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}
	return subject
}

// CreateSection creates a section of subject for term.
func CreateSection(t *testing.T, db *gorm.DB, subject *models.Subject, term string, professor *models.User) *models.Section {
	t.Helper()

	section := &models.Section{
		Name:      fmt.Sprintf("SEC-%d", nextID()),
		SubjectID: subject.ID,
		Term:      term,
		Schedule:  "MWF 09:00-10:00",
		Room:      "R101",
	}
	if professor != nil {
		section.ProfessorID = &professor.ID
	}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("failed to create section: %v", err)
	}
	return section
}

// CreateStudent creates a student account and profile in program.
func CreateStudent(t *testing.T, db *gorm.DB, program *models.Program) *models.Student {
	t.Helper()

	user := CreateUser(t, db, models.RoleStudent)
	student := &models.Student{
		UserID:        user.ID,
		StudentNumber: fmt.Sprintf("2024-%05d", nextID()),
		Status:        models.StudentStatusEnrolled,
		ProgramID:     program.ID,
		YearLevel:     1,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	student.User = *user
	return student
}

// CreateGrade records a grade for student in section.
func CreateGrade(t *testing.T, db *gorm.DB, student *models.Student, section *models.Section, status string) *models.Grade {
	t.Helper()

	grade := &models.Grade{
		StudentID: student.ID,
		SubjectID: section.SubjectID,
		SectionID: section.ID,
		Status:    status,
	}
	if status != models.GradeStatusIncomplete {
		value := 2.0
		grade.Value = &value
	}
	if err := db.Create(grade).Error; err != nil {
		t.Fatalf("failed to create grade: %v", err)
	}
	return grade
}
