package types

// Role controls which routes an authenticated user may reach
type Role string

const (
	RoleMainAdmin Role = "MAIN_ADMIN"
	RoleManager   Role = "MANAGER"
)

// Company is an isolated customer account (the tenant). The API key pair
// authenticates the dialer webhook: the public key is the basic-auth
// username, the secret is verified against its sha256 hash.
type Company struct {
	CompanyID     string `json:"companyId" dynamodbav:"CompanyID"`
	Name          string `json:"name" dynamodbav:"Name"`
	PublicKey     string `json:"publicKey,omitempty" dynamodbav:"PublicKey"`
	SecretKeyHash string `json:"-" dynamodbav:"SecretKeyHash"`
}

// User holds login credentials for a manager account
type User struct {
	UserID       string `json:"userId" dynamodbav:"UserID"`
	Email        string `json:"email" dynamodbav:"Email"`
	PasswordHash string `json:"-" dynamodbav:"PasswordHash"`
	Role         Role   `json:"role" dynamodbav:"Role"`
	CompanyID    string `json:"companyId" dynamodbav:"CompanyID"`
	ManagerID    string `json:"managerId,omitempty" dynamodbav:"ManagerID"`
}

// Manager is the profile side of a user account
type Manager struct {
	ManagerID string `json:"managerId" dynamodbav:"ManagerID"`
	Name      string `json:"name" dynamodbav:"Name"`
	Email     string `json:"email" dynamodbav:"Email"`
	CompanyID string `json:"companyId" dynamodbav:"CompanyID"`
}

// Team groups agents under a company
type Team struct {
	TeamID    string `json:"teamId" dynamodbav:"TeamID"`
	Name      string `json:"name" dynamodbav:"Name"`
	CompanyID string `json:"companyId" dynamodbav:"CompanyID"`
}
