package rbac

// Default policy for the platform's four roles. Admin holds the wildcard.
var RolePermissions = map[string][]string{
	"learner": {
		"quiz:view",
		"quiz:submit",
		"session:join",
		"result:view-own",
		"user:change_password",
	},
	"educator": {
		"quiz:view",
		"quiz:submit",
		"quiz:create",
		"quiz:update",
		"quiz:delete",
		"quiz:import",
		"session:*",
		"result:view-own",
		"invite:issue",
		"invite:view",
		"user:change_password",
	},
	"moderator": {
		"quiz:view",
		"users:list",
		"users:update",
		"invite:*",
		"org:*",
		"moderation:*",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
