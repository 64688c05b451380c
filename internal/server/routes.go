package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/KaiWedekind/Portus/internal/api/v1"
	"github.com/KaiWedekind/Portus/internal/auth"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
	"github.com/KaiWedekind/Portus/internal/users"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service, sessions *redisstore.SessionStore) {
	v1.RegisterAuthRoutes(api, authSvc, sessions)
}

func registerAPIRoutes(api huma.API, userSvc *users.Service) {
	v1.RegisterUserRoutes(api, userSvc)
}
