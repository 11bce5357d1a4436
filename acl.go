package gorem

const (
	publicKey  = "*"
	rolePrefix = "role:"

	aclRead  = "read"
	aclWrite = "write"
)

// ACL is the per record read/write permission metadata the store attaches to a
// record. Keys are user ids, "role:<name>" for roles or "*" for everyone.
type ACL struct {
	permissions map[string]map[string]bool
}

func NewACL() *ACL {
	return &ACL{permissions: map[string]map[string]bool{}}
}

func (a *ACL) SetPublicReadAccess(allowed bool) *ACL {
	return a.setAccess(publicKey, aclRead, allowed)
}

func (a *ACL) SetPublicWriteAccess(allowed bool) *ACL {
	return a.setAccess(publicKey, aclWrite, allowed)
}

func (a *ACL) SetReadAccess(userID string, allowed bool) *ACL {
	return a.setAccess(userID, aclRead, allowed)
}

func (a *ACL) SetWriteAccess(userID string, allowed bool) *ACL {
	return a.setAccess(userID, aclWrite, allowed)
}

func (a *ACL) SetRoleReadAccess(role string, allowed bool) *ACL {
	return a.setAccess(rolePrefix+role, aclRead, allowed)
}

func (a *ACL) SetRoleWriteAccess(role string, allowed bool) *ACL {
	return a.setAccess(rolePrefix+role, aclWrite, allowed)
}

func (a *ACL) ReadAccess(key string) bool {
	return a.permissions[key][aclRead]
}

func (a *ACL) WriteAccess(key string) bool {
	return a.permissions[key][aclWrite]
}

func (a *ACL) setAccess(key, op string, allowed bool) *ACL {
	entry, ok := a.permissions[key]
	if !ok {
		entry = map[string]bool{}
		a.permissions[key] = entry
	}

	if allowed {
		entry[op] = true
	} else {
		delete(entry, op)
		if len(entry) == 0 {
			delete(a.permissions, key)
		}
	}

	return a
}

// Encode produces the store's canonical encoded representation, granted
// permissions only
func (a *ACL) Encode() map[string]interface{} {
	out := make(map[string]interface{}, len(a.permissions))
	for key, ops := range a.permissions {
		entry := make(map[string]interface{}, len(ops))
		for op := range ops {
			entry[op] = true
		}
		out[key] = entry
	}

	return out
}

func decodeACL(raw map[string]interface{}) *ACL {
	acl := NewACL()
	for key, ops := range raw {
		entry, ok := ops.(map[string]interface{})
		if !ok {
			continue
		}

		for op, allowed := range entry {
			if b, ok := allowed.(bool); ok && b {
				acl.setAccess(key, op, true)
			}
		}
	}

	return acl
}

func (a *ACL) clone() *ACL {
	out := NewACL()
	for key, ops := range a.permissions {
		for op := range ops {
			out.setAccess(key, op, true)
		}
	}

	return out
}
