// Enumerated columns shared across the models. String-typed so the
// values bind and serialize as-is through the gin layer.
package model

// Role of a user inside a project.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Valid reports whether r is one of the known project roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may create, edit or delete
// project-scoped entities that require elevated rights.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// GlobalRole is the platform-wide role of a user.
type GlobalRole string

const (
	GlobalRoleAdmin GlobalRole = "admin"
	GlobalRoleUser  GlobalRole = "user"
)

func (r GlobalRole) Valid() bool {
	return r == GlobalRoleAdmin || r == GlobalRoleUser
}

// TaskStatus of a task within its phase.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// IntegrationType identifies an external notification channel. At most
// one integration record may exist per type.
type IntegrationType string

const (
	IntegrationWhatsApp IntegrationType = "whatsapp"
	IntegrationEmail    IntegrationType = "email"
)

func (t IntegrationType) Valid() bool {
	return t == IntegrationWhatsApp || t == IntegrationEmail
}
