package setup

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
)

const rpcExecSQL = "exec_sql"

// RPCCaller is the part of the backend client simple-setup needs.
type RPCCaller interface {
	RPC(ctx context.Context, sess *models.Session, fn string, args any, out any) error
}

// Batch is one SQL script sent in a single exec_sql call.
type Batch struct {
	Name string
	SQL  string
}

type execSQLArgs struct {
	SQL string `json:"sql"`
}

// SimpleBatches create the profiles and hydration_logs tables with their
// row level security policies.
var SimpleBatches = []Batch{
	{Name: "profiles", SQL: profilesSQL},
	{Name: "hydration_logs", SQL: hydrationLogsSQL},
}

// RunSimpleSetup sends batches in order through the exec_sql RPC. The
// caller must be authenticated with the service-role key, so no session is
// passed. It stops at the first failing batch.
func RunSimpleSetup(ctx context.Context, rpc RPCCaller, batches []Batch, log logging.Logger) error {
	log.Info(ctx, "setting up database tables")

	for _, b := range batches {
		if err := rpc.RPC(ctx, nil, rpcExecSQL, execSQLArgs{SQL: b.SQL}, nil); err != nil {
			log.Error(ctx, "error creating table", "table", b.Name, "error", err)
			return fmt.Errorf("create %s: %w", b.Name, err)
		}
		log.Info(ctx, "created table", "table", b.Name)
	}

	log.Info(ctx, "database setup completed")
	return nil
}

const profilesSQL = `
CREATE TABLE IF NOT EXISTS profiles (
  id UUID REFERENCES auth.users(id) ON DELETE CASCADE PRIMARY KEY,
  email TEXT UNIQUE NOT NULL,
  name TEXT,
  weight DECIMAL(5,2),
  gender TEXT CHECK (gender IN ('male', 'female', 'other')),
  activity_level TEXT CHECK (activity_level IN ('sedentary', 'light', 'moderate', 'active', 'very_active')),
  plan_type TEXT DEFAULT 'basic' CHECK (plan_type IN ('basic', 'premium')),
  created_at TIMESTAMPTZ DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);

ALTER TABLE profiles ENABLE ROW LEVEL SECURITY;

CREATE POLICY "Users can view own profile" ON profiles
  FOR SELECT USING (auth.uid() = id);

CREATE POLICY "Users can update own profile" ON profiles
  FOR UPDATE USING (auth.uid() = id);

CREATE POLICY "Users can insert own profile" ON profiles
  FOR INSERT WITH CHECK (auth.uid() = id);
`

const hydrationLogsSQL = `
CREATE TABLE IF NOT EXISTS hydration_logs (
  id UUID DEFAULT uuid_generate_v4() PRIMARY KEY,
  profile_id UUID REFERENCES profiles(id) ON DELETE CASCADE NOT NULL,
  amount_ml INTEGER NOT NULL CHECK (amount_ml > 0),
  logged_at TIMESTAMPTZ DEFAULT NOW(),
  log_date DATE GENERATED ALWAYS AS ((logged_at AT TIME ZONE 'UTC')::DATE) STORED,
  created_at TIMESTAMPTZ DEFAULT NOW()
);

ALTER TABLE hydration_logs ENABLE ROW LEVEL SECURITY;

CREATE POLICY "Users can manage their hydration logs" ON hydration_logs
  FOR ALL USING (profile_id = auth.uid());
`
