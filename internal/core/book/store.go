// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository defines the data access contract for books.
type Repository interface {
	List(context context.Context, limit, offset int) ([]*Book, int, error)
	FindByID(context context.Context, id int64) (*Book, error)
	Create(context context.Context, book *Book) error
	Rename(context context.Context, id int64, name string) (*Book, error)
}
