package businessflow_test

import (
	"context"
	"strings"
	"testing"

	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/repository"
	testingutil "github.com/campushq/campus-hub/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMajorFlow(testDB *testingutil.TestDB) businessflow.MajorFlow {
	return businessflow.NewMajorFlow(
		repository.NewMajorRepository(testDB.DB),
		repository.NewMemberRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestMajorFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newMajorFlow(testDB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("ImportRequiresAdmin", func(t *testing.T) {
			member, err := fixtures.CreateTestMember()
			require.NoError(t, err)

			csv := strings.NewReader("name,code\nPhilosophy,PHIL\n")
			_, err = flow.ImportCSV(ctx, member.ID, csv, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsAdminRequired(err))
		})

		t.Run("ImportSkipsHeaderAndDuplicates", func(t *testing.T) {
			csv := strings.NewReader(
				"name,code\n" +
					"Mechanical Engineering,MECH\n" +
					"Mechanical Engineering,MECH\n" +
					"Linguistics\n" +
					"  \n",
			)
			result, err := flow.ImportCSV(ctx, admin.ID, csv, nil)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Imported)
			assert.Equal(t, 1, result.Skipped)
		})

		t.Run("ReimportSkipsUnchanged", func(t *testing.T) {
			csv := strings.NewReader("Mechanical Engineering,MECH\nArt History,ARTH\n")
			result, err := flow.ImportCSV(ctx, admin.ID, csv, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Imported)
			assert.Equal(t, 0, result.Updated)
			assert.Equal(t, 1, result.Skipped)
		})

		t.Run("ReimportUpdatesCode", func(t *testing.T) {
			csv := strings.NewReader("Linguistics,LING\n")
			result, err := flow.ImportCSV(ctx, admin.ID, csv, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, result.Imported)
			assert.Equal(t, 1, result.Updated)

			list, err := flow.ListMajors(ctx)
			require.NoError(t, err)
			for _, m := range list.Majors {
				if m.Name == "Linguistics" {
					require.NotNil(t, m.Code)
					assert.Equal(t, "LING", *m.Code)
				}
			}
		})

		t.Run("ListMajors", func(t *testing.T) {
			result, err := flow.ListMajors(ctx)
			require.NoError(t, err)

			names := make([]string, 0, len(result.Majors))
			for _, m := range result.Majors {
				names = append(names, m.Name)
			}
			assert.Contains(t, names, "Linguistics")
			assert.Contains(t, names, "Art History")
		})

		t.Run("ExportCSV", func(t *testing.T) {
			data, filename, err := flow.ExportCSV(ctx)
			require.NoError(t, err)
			assert.Contains(t, filename, ".csv")

			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			require.NotEmpty(t, lines)
			assert.Equal(t, "name,code", lines[0])
			assert.Contains(t, string(data), "Mechanical Engineering,MECH")
		})

		return nil
	})
	require.NoError(t, err)
}
