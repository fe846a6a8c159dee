package service

import "errors"

var (
	// ErrForbidden indicates the actor may not act on the target record.
	ErrForbidden = errors.New("not allowed to access this resource")

	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates the username or email is already taken.
	ErrUserExists = errors.New("username or email already exists")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled indicates the account is deactivated.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidToken indicates a malformed, expired or revoked token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongPassword indicates the current password did not match.
	ErrWrongPassword = errors.New("old password is incorrect")

	// ErrProgramNotFound indicates the program does not exist.
	ErrProgramNotFound = errors.New("program not found")
	// ErrCurriculumNotFound indicates the curriculum does not exist.
	ErrCurriculumNotFound = errors.New("curriculum not found")
	// ErrSubjectNotFound indicates the subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrSectionNotFound indicates the section does not exist.
	ErrSectionNotFound = errors.New("section not found")
	// ErrStudentNotFound indicates the student profile does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrEnrollmentNotFound indicates the enrollment does not exist.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrGradeNotFound indicates the grade does not exist.
	ErrGradeNotFound = errors.New("grade not found")
	// ErrApplicationNotFound indicates the application does not exist.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrDocumentNotFound indicates the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAuditLogNotFound indicates the audit record does not exist.
	ErrAuditLogNotFound = errors.New("audit log not found")

	// ErrDuplicateRecord indicates a unique constraint was violated.
	ErrDuplicateRecord = errors.New("record already exists")
	// ErrStudentProfileExists indicates the account already has a student profile.
	ErrStudentProfileExists = errors.New("user already has a student profile")
	// ErrNotStudentAccount indicates the account does not hold the student role.
	ErrNotStudentAccount = errors.New("user must have the student role")
	// ErrInvalidGrade indicates the grade value and status disagree.
	ErrInvalidGrade = errors.New("invalid grade")
)

// ErrNotProfessor indicates a section was assigned to an account without the professor role.
var ErrNotProfessor = errors.New("assigned user must have the professor role")
