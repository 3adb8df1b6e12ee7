package memory

import (
	"context"
	"sort"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type memberRepository struct {
	a   access
	now func() time.Time
}

func memberUniqueConflict(st *state, m domain.Member, except int32) error {
	for id, other := range st.members {
		if id == except {
			continue
		}
		if other.Email == m.Email {
			return domain.Conflict("email already exists")
		}
		if other.MembershipNumber == m.MembershipNumber {
			return domain.Conflict("membership_number already exists")
		}
	}
	return nil
}

func (r *memberRepository) Create(_ context.Context, m *domain.Member) error {
	return r.a.write(func(st *state) error {
		if err := memberUniqueConflict(st, *m, 0); err != nil {
			return err
		}
		st.nextMemberID++
		now := r.now()
		m.ID = st.nextMemberID
		m.CreatedAt, m.UpdatedAt = now, now
		st.members[m.ID] = *m
		return nil
	})
}

func (r *memberRepository) GetByID(_ context.Context, id int32) (*domain.Member, error) {
	var out domain.Member
	err := r.a.read(func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return domain.NotFound("member", id)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Member, error) {
	return r.GetByID(ctx, id)
}

func (r *memberRepository) Update(_ context.Context, id int32, patch domain.MemberPatch) (*domain.Member, error) {
	var out domain.Member
	err := r.a.write(func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return domain.NotFound("member", id)
		}
		if patch.Empty() {
			out = m
			return nil
		}
		if patch.Name != nil {
			m.Name = *patch.Name
		}
		if patch.Email != nil {
			m.Email = *patch.Email
		}
		if patch.MembershipNumber != nil {
			m.MembershipNumber = *patch.MembershipNumber
		}
		if err := memberUniqueConflict(st, m, id); err != nil {
			return err
		}
		m.UpdatedAt = r.now()
		st.members[id] = m
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memberRepository) UpdateStatus(_ context.Context, id int32, status domain.MemberStatus) error {
	return r.a.write(func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return domain.NotFound("member", id)
		}
		m.Status = status
		m.UpdatedAt = r.now()
		st.members[id] = m
		return nil
	})
}

func (r *memberRepository) Delete(_ context.Context, id int32) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.members[id]; !ok {
			return domain.NotFound("member", id)
		}
		for _, t := range st.transactions {
			if t.MemberID == id {
				return domain.Conflict("member is referenced by other records")
			}
		}
		for _, f := range st.fines {
			if f.MemberID == id {
				return domain.Conflict("member is referenced by other records")
			}
		}
		delete(st.members, id)
		return nil
	})
}

func (r *memberRepository) List(_ context.Context, f repository.MemberFilter) ([]domain.Member, error) {
	members := []domain.Member{}
	err := r.a.read(func(st *state) error {
		for _, m := range st.members {
			if f.Status == "" || m.Status == f.Status {
				members = append(members, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID < members[j].ID
	})
	return page(members, f.Limit, f.Offset), nil
}

func (r *memberRepository) Count(_ context.Context, f repository.MemberFilter) (int, error) {
	n := 0
	err := r.a.read(func(st *state) error {
		for _, m := range st.members {
			if f.Status == "" || m.Status == f.Status {
				n++
			}
		}
		return nil
	})
	return n, err
}
