package models

import "time"

// User はユーザーの永続化構造体を表します。
// bsonタグ: MongoDB用、JSONタグ: ヘルスチェック等のレスポンス用
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"` // JSONに出さない
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// RegisterRequest は /register フォームの入力です。
type RegisterRequest struct {
	Username string `form:"username" binding:"max=50"`
	Password string `form:"password" binding:"max=72"` // bcryptは72バイトまで
}

// LoginRequest は /login フォームの入力です。
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// ResetPasswordRequest は /reset-password フォームの入力です。
type ResetPasswordRequest struct {
	NewPassword     string `form:"newPassword" binding:"max=72"`
	ConfirmPassword string `form:"confirmPassword" binding:"max=72"`
}

// ContactRequest は /contact フォームの入力です。
type ContactRequest struct {
	Name    string `form:"name" binding:"required,max=100"`
	Email   string `form:"email" binding:"omitempty,email"`
	Message string `form:"message" binding:"max=2000"`
}
