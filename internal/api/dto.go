package api

import "github.com/commwatch/commwatch/internal/domain"

// Request/response DTOs. Field names follow the public wire contract.

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type SubmitReportResponse struct {
	Message         string `json:"message"`
	ReferenceNumber string `json:"referenceNumber"`
}

type ForwardReportRequest struct {
	GroupIds []domain.GroupId `json:"groupIds" validate:"required"`
}

type ForwardReportResponse struct {
	Message string                `json:"message"`
	History domain.ForwardHistory `json:"history"`
}

type UpdateGroupRequest struct {
	Emails string `json:"emails" validate:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty"`
}

type CreateUserResponse struct {
	Message string         `json:"message"`
	UserId  domain.AdminId `json:"userId"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type RecentReport struct {
	Title string          `json:"title"`
	Date  string          `json:"date"`
	Id    domain.ReportId `json:"id"`
}

type StatsResponse struct {
	Total   int            `json:"total"`
	ByMonth []MonthCount   `json:"byMonth"`
	Trend   int            `json:"trend"`
	Recent  []RecentReport `json:"recent"`
}
