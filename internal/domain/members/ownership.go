package members

import "context"

// OwnerOf expone el ownerUserID de un miembro.
// Se usa para evitar ciclos de imports entre módulos (members <-> caregrants).
func (s *Service) OwnerOf(ctx context.Context, memberID string) (string, error) {
	m, err := s.GetByID(ctx, memberID)
	if err != nil {
		return "", err
	}
	return m.OwnerUserID, nil
}
