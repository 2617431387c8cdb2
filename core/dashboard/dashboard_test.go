package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/minicrm/core/dashboard"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/database/inmem"
	"github.com/trezcool/minicrm/testutil"
)

func TestService_Summary(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	ctx := context.Background()

	usrRepo := inmemdb.NewUserRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	productRepo := inmemdb.NewProductRepository(db)
	productSvc := product.NewService(productRepo, 5)
	orderSvc := order.NewService(inmemdb.NewOrderRepository(db), productSvc)
	svc := dashboard.NewService(user.NewService(usrRepo), student.NewService(studentRepo, 5), productSvc, orderSvc)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Summary{Months: []student.MonthCount{}}, sum)

	usr := testutil.CreateUser(t, usrRepo, "Ann", "ann@test.cd", "secret", user.RoleUser)
	testutil.CreateStudent(t, studentRepo, "S1", "s1@test.cd", "", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	testutil.CreateStudent(t, studentRepo, "S2", "s2@test.cd", "", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	testutil.CreateStudent(t, studentRepo, "S3", "s3@test.cd", "", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	pen := testutil.CreateProduct(t, productRepo, "Pen", "Office", "1", 1)
	testutil.CreateProduct(t, productRepo, "Desk", "Office", "250", 1)
	_, err = orderSvc.Checkout(ctx, usr.ID, order.Cart{pen.ID: 1})
	require.NoError(t, err)

	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Users)
	assert.Equal(t, 3, sum.Students)
	assert.Equal(t, 2, sum.Products)
	assert.Equal(t, 1, sum.Orders)
	require.NotNil(t, sum.TopProduct)
	assert.Equal(t, "Desk", sum.TopProduct.Title)
	assert.Equal(t, []student.MonthCount{{Month: "2024-05", Total: 2}, {Month: "2024-04", Total: 1}}, sum.Months)
}
