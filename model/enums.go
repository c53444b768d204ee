package model

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type AccountStatus string

const (
	AccountPending   AccountStatus = "PENDING"
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
	AccountDeleted   AccountStatus = "DELETED"
)

type ProviderType string

const (
	ProviderLocal  ProviderType = "LOCAL"
	ProviderGoogle ProviderType = "GOOGLE"
	ProviderGithub ProviderType = "GITHUB"
)

// TargetType is what a Like points at.
type TargetType string

const (
	TargetPost    TargetType = "POST"
	TargetComment TargetType = "COMMENT"
)

type LikeType string

const (
	LikeLike  LikeType = "LIKE"
	LikeLove  LikeType = "LOVE"
	LikeHaha  LikeType = "HAHA"
	LikeWow   LikeType = "WOW"
	LikeSad   LikeType = "SAD"
	LikeAngry LikeType = "ANGRY"
)
