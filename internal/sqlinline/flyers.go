package sqlinline

const QInsertSavedFlyer = `--sql 52408ac3-ce59-4ba6-93ac-33bdeb57f3a9
insert into saved_flyers (
    id, user_id, project_id, category, headline, aspect_ratio,
    prompt, image_key, mime, bytes, credits_used, created_at
)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text,
        $7::text, $8::text, $9::text, $10::bigint, $11::int, now())
returning created_at;
`

const QListSavedFlyers = `--sql cc046113-2e59-4fff-a428-0957cd126d12
select id::text, user_id, project_id, category, headline, aspect_ratio,
       prompt, image_key, mime, bytes, credits_used, created_at
from saved_flyers
where user_id = $1::text
order by created_at desc
limit $2::int;
`

const QGetSavedFlyer = `--sql 5aa7aad5-b38c-49e8-b547-a39b95f491f2
select id::text, user_id, project_id, category, headline, aspect_ratio,
       prompt, image_key, mime, bytes, credits_used, created_at
from saved_flyers
where user_id = $1::text
  and id = $2::uuid;
`

const QDeleteSavedFlyer = `--sql ac1526f2-b4c1-41d7-89ab-bfe980891802
delete from saved_flyers
where user_id = $1::text
  and id = $2::uuid;
`
