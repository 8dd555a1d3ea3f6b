// internal/store/memory/memory.go

// Package memory is the fixture implementation of the data-source
// abstraction: a mutex-guarded in-process store used for demo mode and
// tests. It enforces the same transition preconditions as the postgres
// implementation so the services behave identically against either.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

// Store holds everything in maps under a single mutex. Operations are
// short and in-process, so one lock also gives us the atomicity the loan
// transitions require.
type Store struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	credentials map[uuid.UUID]*domain.Credential
	emailIndex  map[string]uuid.UUID
	sessions    map[string]*domain.Session
	books       map[uuid.UUID]*domain.Book
	loans       map[uuid.UUID]*domain.Loan
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]*domain.User),
		credentials: make(map[uuid.UUID]*domain.Credential),
		emailIndex:  make(map[string]uuid.UUID),
		sessions:    make(map[string]*domain.Session),
		books:       make(map[uuid.UUID]*domain.Book),
		loans:       make(map[uuid.UUID]*domain.Loan),
	}
}

var _ domain.Store = (*Store)(nil)

// CreateUser stores the user and credential together.
func (s *Store) CreateUser(ctx context.Context, user *domain.User, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.emailIndex[key]; exists {
		return domain.ErrEmailTaken
	}

	u := *user
	c := *cred
	s.users[u.ID] = &u
	s.credentials[u.ID] = &c
	s.emailIndex[key] = u.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, *domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	u := *s.users[id]
	c := *s.credentials[id]
	return &u, &c, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := *session
	s.sessions[sess.Token] = &sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *book
	s.books[b.ID] = &b
	return nil
}

func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := *book
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	books := make([]*domain.Book, 0, len(s.books))
	for _, book := range s.books {
		if q != "" && !matches(book, q) {
			continue
		}
		b := *book
		books = append(books, &b)
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ISBN < books[j].ISBN
	})
	return books, nil
}

func matches(book *domain.Book, q string) bool {
	return strings.Contains(strings.ToLower(book.Title), q) ||
		strings.Contains(strings.ToLower(book.Author), q) ||
		strings.Contains(strings.ToLower(book.ISBN), q)
}

func (s *Store) CountBooks(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books), nil
}

// Borrow performs the availability check-and-decrement and the loan insert
// under the store lock, so two borrows racing for the last copy cannot
// both succeed.
func (s *Store) Borrow(ctx context.Context, bookID, userID uuid.UUID, loanDate, dueDate time.Time) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[bookID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if book.Available <= 0 {
		return nil, domain.ErrNoCopies
	}

	book.Available--
	book.UpdatedAt = loanDate

	loan := &domain.Loan{
		ID:           uuid.New(),
		BookID:       bookID,
		UserID:       userID,
		LoanDate:     loanDate,
		DueDate:      dueDate,
		Status:       domain.LoanActive,
		RenewalCount: 0,
	}
	s.loans[loan.ID] = loan

	out := *loan
	return &out, nil
}

func (s *Store) Return(ctx context.Context, loanID uuid.UUID, returnDate time.Time) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if loan.Status == domain.LoanReturned {
		return nil, domain.ErrAlreadyReturned
	}

	loan.Status = domain.LoanReturned
	rd := returnDate
	loan.ReturnDate = &rd

	if book, ok := s.books[loan.BookID]; ok && book.Available < book.TotalCopies {
		book.Available++
		book.UpdatedAt = returnDate
	}

	out := *loan
	return &out, nil
}

func (s *Store) Renew(ctx context.Context, loanID uuid.UUID, extendBy time.Duration, maxRenewals int) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if loan.Status == domain.LoanReturned {
		return nil, domain.ErrAlreadyReturned
	}
	if loan.RenewalCount >= maxRenewals {
		return nil, domain.ErrRenewalLimit
	}

	loan.DueDate = loan.DueDate.Add(extendBy)
	loan.RenewalCount++

	out := *loan
	return &out, nil
}

func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *loan
	return &out, nil
}

func (s *Store) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loans []*domain.Loan
	for _, loan := range s.loans {
		if loan.UserID != userID {
			continue
		}
		l := *loan
		loans = append(loans, &l)
	}
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].Open() != loans[j].Open() {
			return loans[i].Open()
		}
		return loans[i].LoanDate.After(loans[j].LoanDate)
	})
	return loans, nil
}

func (s *Store) CountOpenLoans(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, loan := range s.loans {
		if loan.Open() {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOverdueLoans(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, loan := range s.loans {
		if loan.StatusView(now) == domain.LoanOverdue {
			count++
		}
	}
	return count, nil
}
