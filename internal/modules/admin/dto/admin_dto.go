package dto

import userDto "anoa.com/notevault/internal/modules/user/dto"

type UserStatusResponse struct {
	Message string                `json:"message"`
	User    *userDto.UserResponse `json:"user"`
}
