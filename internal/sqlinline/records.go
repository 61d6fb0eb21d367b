package sqlinline

const QPingRecords = `--sql a82a11cc-73d4-4118-8dfe-c71dcf7fa05f
select 1;
`

const QGetRecord = `--sql 54e3fdab-ef0a-4eef-8113-5b6fcd5ab519
select fields, modified_at
from user_records
where owner_id = $1::text
  and record_name = $2::text;
`

const QUpsertRecord = `--sql a1c39bc6-1486-4222-91be-fa49efb9bb77
insert into user_records (owner_id, record_name, fields, modified_at)
values ($1::text, $2::text, $3::jsonb, now())
on conflict (owner_id, record_name) do update set
    fields = excluded.fields,
    modified_at = excluded.modified_at
returning modified_at;
`
